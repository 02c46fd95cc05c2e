// Package areachart draws the selected country's monthly temperatures for
// the selected year as a smoothed line over an area filled with the
// temperature palette.
package areachart

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	svg "github.com/ajstarks/svgo"

	"github.com/i474232898/climate-dashboard/internal/climate"
	"github.com/i474232898/climate-dashboard/internal/scale"
	"github.com/i474232898/climate-dashboard/internal/scene"
)

const (
	Width        = 700
	Height       = 500
	MarginLeft   = 50
	MarginRight  = 10
	MarginTop    = 10
	MarginBottom = 50

	innerWidth  = Width - MarginLeft - MarginRight
	innerHeight = Height - MarginTop - MarginBottom

	transition  = 400 * time.Millisecond
	lineStroke  = "#FF4500"
	lineWidth   = 1.5
	areaOpacity = 0.8

	// YTop is the fixed upper bound of the temperature axis.
	YTop = 35
	// YBottomNegative is the lower bound once any value drops below zero.
	YBottomNegative = -30

	// YLabel is the temperature axis caption.
	YLabel = "Temperature (℃)"
)

// anchorYear is the synthetic year whose months place the points.
const anchorYear = 1900

func anchor(m time.Month) time.Time {
	return time.Date(anchorYear, m, 1, 0, 0, 0, 0, time.UTC)
}

// View is one area chart instance. It is not safe for concurrent use.
type View struct {
	gradientID string
	palette    *scale.Palette
	x          scale.Time
	yLo        scene.Num
	yHi        scene.Num

	points *scene.Layer
	label  string
}

// New creates an empty chart over January to December with the full
// temperature axis.
func New() *View {
	v := &View{
		gradientID: scene.NewID("area-gradient"),
		palette:    scale.Temperature,
		x:          scale.NewTime(anchor(time.January), anchor(time.December), 0, innerWidth),
		points:     scene.NewLayer(),
	}
	v.yLo.Set(YBottomNegative, scene.Transition{})
	v.yHi.Set(YTop, scene.Transition{})
	return v
}

func (v *View) y(now time.Time) scale.Linear {
	return scale.NewLinear(v.yLo.At(now), v.yHi.At(now), innerHeight, 0)
}

// Update relabels the chart from records and moves the curve to their
// values. The axis starts at YBottomNegative when any value is below zero
// and at zero otherwise. Unparsable values leave a gap in the curve.
func (v *View) Update(records []climate.TemperatureRecord, now time.Time) {
	tr := scene.Over(now, transition)

	v.label = ""
	if len(records) > 0 {
		v.label = records[0].CountryName + ", " + strconv.Itoa(records[0].Year)
	}

	lo := 0.0
	keys := make([]string, 0, len(records))
	kept := make([]climate.TemperatureRecord, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if math.IsNaN(r.Temperature) || math.IsInf(r.Temperature, 0) {
			continue
		}
		if r.Temperature < 0 {
			lo = YBottomNegative
		}
		k := r.MonthAbbrev()
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
		kept = append(kept, r)
	}
	v.yLo.Set(lo, tr)
	v.yHi.Set(YTop, tr)

	v.points.Join(keys)
	for i, r := range kept {
		n := v.points.Node(keys[i])
		n.Datum = r
		n.SetNum("value", r.Temperature, tr)
	}
}

// Label returns the "<Country>, <Year>" caption.
func (v *View) Label() string { return v.label }

// YDomain returns the temperature axis the chart is heading to.
func (v *View) YDomain() (lo, hi float64) { return v.yLo.Target(), v.yHi.Target() }

// Values returns the plotted temperatures in month order.
func (v *View) Values() []float64 {
	out := make([]float64, 0, v.points.Len())
	for _, n := range v.points.Nodes() {
		out = append(out, n.NumTarget("value"))
	}
	return out
}

func (v *View) plot(now time.Time) ([]point, scale.Linear) {
	y := v.y(now)
	pts := make([]point, 0, v.points.Len())
	for _, n := range v.points.Nodes() {
		r, _ := n.Datum.(climate.TemperatureRecord)
		pts = append(pts, point{X: v.x.Map(anchor(r.Month)), Y: y.Map(n.Num("value", now))})
	}
	return pts, y
}

// LinePath returns the SVG path of the line at now.
func (v *View) LinePath(now time.Time) string {
	pts, _ := v.plot(now)
	return linePath(pts)
}

// AreaPath returns the SVG path of the area between the line and the zero
// line at now.
func (v *View) AreaPath(now time.Time) string {
	pts, y := v.plot(now)
	return areaPath(pts, y.Map(0))
}

// GradientExtent returns where the palette's low and high ends sit on the
// plot at now. The gradient follows the axis so a color always means the
// same temperature.
func (v *View) GradientExtent(now time.Time) (y1, y2 float64) {
	lo, hi := v.palette.Domain()
	y := v.y(now)
	return y.Map(lo), y.Map(hi)
}

// Render writes the frame at now as a standalone SVG document.
func (v *View) Render(w io.Writer, now time.Time) error {
	ew := &scene.ErrWriter{W: w}
	c := svg.New(ew)
	c.Start(Width, Height, `class="area-chart"`)

	y1, y2 := v.GradientExtent(now)
	c.Def()
	scene.UserSpaceGradient(c.Writer, v.gradientID, y1, y2, v.palette.Gradient())
	c.DefEnd()

	c.Gtransform(fmt.Sprintf("translate(%d,%d)", MarginLeft, MarginTop))
	ticks := make([]scene.Tick, 0, len(climate.MonthAbbrevs))
	for i, m := range climate.MonthAbbrevs {
		ticks = append(ticks, scene.Tick{Pos: v.x.Map(anchor(time.Month(i + 1))), Label: m})
	}
	scene.AxisBottom(c, 0, innerWidth, innerHeight, ticks)
	scene.AxisLeft(c, 0, innerHeight, 0, scene.LinearTicks(v.y(now), 10, nil))

	if d := v.AreaPath(now); d != "" {
		c.Path(d, `class="area"`, fmt.Sprintf(`fill="url(#%s)"`, v.gradientID), fmt.Sprintf(`opacity="%s"`, scene.Fmt(areaOpacity)))
	}
	if d := v.LinePath(now); d != "" {
		c.Path(d, `class="line"`, `fill="none"`, fmt.Sprintf(`stroke="%s"`, lineStroke), fmt.Sprintf(`stroke-width="%s"`, scene.Fmt(lineWidth)))
	}

	c.Text(innerWidth/2, innerHeight+40, v.label, `class="x-label"`, `text-anchor="middle"`)
	c.Text(-innerHeight/2, -40, YLabel, `class="y-label"`, `text-anchor="middle"`, `transform="rotate(-90)"`)
	c.Gend()
	c.End()
	return ew.Err
}
