// Package barchart draws the selected country's twelve monthly temperatures
// for the selected year as colored bars.
package barchart

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
	Width        = 500
	Height       = 500
	MarginLeft   = 50
	MarginRight  = 10
	MarginTop    = 10
	MarginBottom = 50

	innerWidth  = Width - MarginLeft - MarginRight
	innerHeight = Height - MarginTop - MarginBottom

	bandPadding = 0.1
	transition  = 500 * time.Millisecond
	hoverStroke = "#000000"

	neutralFill = "#808080"
)

var initialDomain = [2]float64{-40, 35}

// Bar is the resting geometry of one bar in plot coordinates.
type Bar struct {
	Label  string
	Value  float64
	X, Y   float64
	Width  float64
	Height float64
	Fill   string
}

// View is one bar chart instance. It is not safe for concurrent use.
type View struct {
	palette *scale.Palette
	x       scale.Band
	yLo     scene.Num
	yHi     scene.Num

	bars    *scene.Layer
	hovered string
	tooltip scene.Tooltip
}

// New creates an empty chart with the month axis and the initial
// temperature axis.
func New() *View {
	v := &View{
		palette: scale.Temperature,
		x:       scale.NewBand(climate.MonthAbbrevs, 0, innerWidth, bandPadding),
		bars:    scene.NewLayer(),
	}
	v.yLo.Set(initialDomain[0], scene.Transition{})
	v.yHi.Set(initialDomain[1], scene.Transition{})
	return v
}

// domain spans the observed values and always includes zero so that bars
// grow from a visible baseline.
func domain(records []climate.TemperatureRecord) (lo, hi float64) {
	seen := false
	for _, r := range records {
		if math.IsNaN(r.Temperature) || math.IsInf(r.Temperature, 0) {
			continue
		}
		if !seen {
			lo, hi, seen = r.Temperature, r.Temperature, true
			continue
		}
		lo = math.Min(lo, r.Temperature)
		hi = math.Max(hi, r.Temperature)
	}
	if !seen {
		return initialDomain[0], initialDomain[1]
	}
	lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi
}

func (v *View) y(now time.Time) scale.Linear {
	return scale.NewLinear(v.yLo.At(now), v.yHi.At(now), innerHeight, 0)
}

func (v *View) yTarget() scale.Linear {
	return scale.NewLinear(v.yLo.Target(), v.yHi.Target(), innerHeight, 0)
}

func label(r climate.TemperatureRecord) string {
	if r.Label != "" {
		return r.Label
	}
	return r.MonthAbbrev()
}

func (v *View) fill(t float64) string {
	if hex, ok := v.palette.Hex(t); ok {
		return hex
	}
	return neutralFill
}

// extent returns the top and height of a bar for t under y.
func extent(y scale.Linear, t float64) (top, height float64) {
	base := y.Map(0)
	if math.IsNaN(t) {
		return base, 0
	}
	at := y.Map(t)
	return math.Min(base, at), math.Abs(base - at)
}

// Update rescales the temperature axis to records and redraws one bar per
// record, keyed by month. New bars grow from the zero line; bars for months
// no longer present are removed.
func (v *View) Update(records []climate.TemperatureRecord, now time.Time) {
	tr := scene.Over(now, transition)
	lo, hi := domain(records)
	v.yLo.Set(lo, tr)
	v.yHi.Set(hi, tr)
	y := v.yTarget()

	keys := make([]string, len(records))
	for i, r := range records {
		keys[i] = r.MonthAbbrev()
	}
	j := v.bars.Join(keys)
	entered := make(map[string]bool, len(j.Enter))
	for _, k := range j.Enter {
		entered[k] = true
	}

	done := make(map[string]bool, len(keys))
	for i, r := range records {
		if done[keys[i]] {
			continue
		}
		done[keys[i]] = true
		n := v.bars.Node(keys[i])
		n.Datum = r
		x, _ := v.x.Pos(keys[i])
		top, height := extent(y, r.Temperature)
		if entered[keys[i]] {
			n.SetNum("x", x, scene.Transition{})
			n.SetNum("y", y.Map(0), scene.Transition{})
			n.SetNum("height", 0, scene.Transition{})
			n.SetNum("stroke-width", 0, scene.Transition{})
			n.SetColor("fill", v.fill(r.Temperature), scene.Transition{})
		}
		n.SetNum("x", x, tr)
		n.SetNum("y", top, tr)
		n.SetNum("height", height, tr)
		n.SetColor("fill", v.fill(r.Temperature), tr)
	}

	if v.hovered != "" {
		if v.bars.Node(v.hovered) == nil {
			v.hovered = ""
			v.tooltip.Hide(now)
			return
		}
		v.tooltip.SetLines(v.tooltipLines(v.hovered))
	}
}

func (v *View) tooltipLines(key string) []string {
	r, _ := v.bars.Node(key).Datum.(climate.TemperatureRecord)
	if math.IsNaN(r.Temperature) {
		return []string{label(r), "No available data"}
	}
	return []string{label(r), strconv.FormatFloat(r.Temperature, 'f', -1, 64) + "℃"}
}

// PointerEnter outlines the bar for month (e.g. "Jan") and shows its
// tooltip next to (x, y). It reports false when no such bar is drawn.
func (v *View) PointerEnter(month string, x, y float64, now time.Time) bool {
	if v.bars.Node(month) == nil {
		return false
	}
	if v.hovered != "" && v.hovered != month {
		v.bars.Node(v.hovered).SetNum("stroke-width", 0, scene.Transition{})
	}
	v.hovered = month
	v.bars.Node(month).SetNum("stroke-width", 1, scene.Transition{})
	v.tooltip.Show(v.tooltipLines(month), x, y, now)
	return true
}

// PointerLeave removes the outline and hides the tooltip.
func (v *View) PointerLeave(now time.Time) {
	if n := v.bars.Node(v.hovered); n != nil {
		n.SetNum("stroke-width", 0, scene.Transition{})
	}
	v.hovered = ""
	v.tooltip.Hide(now)
}

// Hovered returns the hovered month, or "".
func (v *View) Hovered() string { return v.hovered }

// TooltipLines returns the tooltip text.
func (v *View) TooltipLines() []string { return v.tooltip.Lines }

// YDomain returns the temperature axis the chart is heading to.
func (v *View) YDomain() (lo, hi float64) { return v.yLo.Target(), v.yHi.Target() }

// Bar returns the resting geometry of month's bar.
func (v *View) Bar(month string) (Bar, bool) {
	n := v.bars.Node(month)
	if n == nil {
		return Bar{}, false
	}
	r, _ := n.Datum.(climate.TemperatureRecord)
	return Bar{
		Label:  label(r),
		Value:  r.Temperature,
		X:      n.NumTarget("x"),
		Y:      n.NumTarget("y"),
		Width:  v.x.Bandwidth(),
		Height: n.NumTarget("height"),
		Fill:   n.ColorTarget("fill"),
	}, true
}

// Len returns the number of bars.
func (v *View) Len() int { return v.bars.Len() }

// Render writes the frame at now as a standalone SVG document.
func (v *View) Render(w io.Writer, now time.Time) error {
	ew := &scene.ErrWriter{W: w}
	c := svg.New(ew)
	c.Start(Width, Height, `class="bar-chart"`)
	c.Gtransform(fmt.Sprintf("translate(%d,%d)", MarginLeft, MarginTop))

	y := v.y(now)
	bw := v.x.Bandwidth()
	months := make([]scene.Tick, 0, len(climate.MonthAbbrevs))
	for _, m := range v.x.Labels() {
		x, _ := v.x.Pos(m)
		months = append(months, scene.Tick{Pos: x + bw/2, Label: m})
	}
	scene.AxisBottom(c, 0, innerWidth, innerHeight, months)
	scene.AxisLeft(c, 0, innerHeight, 0, scene.LinearTicks(y, 10, nil))

	for _, n := range v.bars.Nodes() {
		attrs := []string{
			`class="bar"`,
			fmt.Sprintf(`data-month="%s"`, n.Key),
			fmt.Sprintf(`fill="%s"`, n.Color("fill", now)),
		}
		if n.Num("stroke-width", now) > 0 {
			attrs = append(attrs, fmt.Sprintf(`stroke="%s"`, hoverStroke))
		}
		c.Rect(scene.Px(n.Num("x", now)), scene.Px(n.Num("y", now)), scene.Px(bw), scene.Px(n.Num("height", now)), attrs...)
	}
	c.Gend()

	v.tooltip.Render(c, now)
	c.End()
	return ew.Err
}
