// Package globe draws the rotating choropleth: country outlines on an
// orthographic globe, filled by the selected month's temperature.
package globe

import (
	"fmt"
	"io"
	"strconv"
	"time"

	svg "github.com/ajstarks/svgo"

	"github.com/i474232898/climate-dashboard/internal/climate"
	"github.com/i474232898/climate-dashboard/internal/geo"
	"github.com/i474232898/climate-dashboard/internal/scale"
	"github.com/i474232898/climate-dashboard/internal/scene"
)

const (
	Width  = 1400
	Height = 800

	ProjectionScale     = 250
	RotationSensitivity = 75

	// NeutralFill colors countries without data for the selected year.
	NeutralFill = "#808080"
	// NoData replaces the country name in the tooltip of such countries.
	NoData = "No available data"

	fillTransition  = 100 * time.Millisecond
	hoverTransition = 50 * time.Millisecond
	dimOpacity      = 0.5
	hoverStroke     = "#0A0A0A"
	hoverStrokeW    = 0.5

	legendX      = 0
	legendY      = 200
	legendWidth  = 10
	legendHeight = 300
)

// View is one globe instance. It is not safe for concurrent use; the
// controller drives it from a single goroutine.
type View struct {
	gradientID string
	projection *geo.Orthographic
	palette    *scale.Palette
	legend     scale.Linear

	shapes *scene.Layer
	slice  climate.YearSlice
	month  int
	title  string

	hovered string
	tooltip scene.Tooltip
}

// New creates a globe centered on its drawing surface with the legend and
// an empty shape layer.
func New() *View {
	lo, hi := scale.Temperature.Domain()
	return &View{
		gradientID: scene.NewID("globe-gradient"),
		projection: geo.NewOrthographic(ProjectionScale, Width/2, Height/2),
		palette:    scale.Temperature,
		legend:     scale.NewLinear(lo, hi, legendHeight, 0),
		shapes:     scene.NewLayer(),
	}
}

// featureKeys keys shapes by ISO code. Features with no code, or a code
// already taken, fall back to their position.
func featureKeys(features []geo.Feature) []string {
	keys := make([]string, len(features))
	seen := make(map[string]bool, len(features))
	for i, f := range features {
		k := f.ISOCode
		if k == "" || seen[k] {
			k = "feature-" + strconv.Itoa(i)
		}
		seen[k] = true
		keys[i] = k
	}
	return keys
}

// record returns iso's record for the current month, if any.
func (v *View) record(iso string) (climate.TemperatureRecord, bool) {
	recs, ok := v.slice.Get(iso)
	if !ok || v.month < 0 || v.month >= len(recs) {
		return climate.TemperatureRecord{}, false
	}
	return recs[v.month], true
}

func (v *View) fill(iso string) string {
	r, ok := v.record(iso)
	if !ok {
		return NeutralFill
	}
	if hex, ok := v.palette.Hex(r.Temperature); ok {
		return hex
	}
	return NeutralFill
}

// Update joins features against the drawn shapes by ISO code and recolors
// them from slice at month (0 = January). Countries missing from slice get
// NeutralFill. A hovered country's tooltip is rewritten for the new data.
func (v *View) Update(features []geo.Feature, slice climate.YearSlice, month int, now time.Time) {
	v.slice = slice
	v.month = month
	v.title = strconv.Itoa(slice.Year())

	keys := featureKeys(features)
	j := v.shapes.Join(keys)
	entered := make(map[string]bool, len(j.Enter))
	for _, k := range j.Enter {
		entered[k] = true
	}

	tr := scene.Over(now, fillTransition)
	for i, f := range features {
		n := v.shapes.Node(keys[i])
		n.Datum = f
		if entered[keys[i]] {
			n.SetColor("fill", v.fill(f.ISOCode), scene.Transition{})
			n.SetNum("opacity", v.restingOpacity(keys[i]), scene.Transition{})
			n.SetNum("stroke-width", 0, scene.Transition{})
			continue
		}
		n.SetColor("fill", v.fill(f.ISOCode), tr)
	}

	if v.hovered != "" {
		if v.shapes.Node(v.hovered) == nil {
			v.hovered = ""
			v.tooltip.Hide(now)
			return
		}
		v.tooltip.SetLines(v.tooltipLines(v.hovered))
	}
}

func (v *View) restingOpacity(key string) float64 {
	if v.hovered == "" || v.hovered == key {
		return 1
	}
	return dimOpacity
}

func (v *View) tooltipLines(key string) []string {
	n := v.shapes.Node(key)
	if n == nil {
		return []string{NoData}
	}
	f, _ := n.Datum.(geo.Feature)
	r, ok := v.record(f.ISOCode)
	if !ok {
		return []string{NoData}
	}
	return []string{r.CountryName, strconv.FormatFloat(r.Temperature, 'f', -1, 64) + "℃"}
}

// Rotate turns the globe by a drag delta in pixels. Shapes are re-projected
// on the next Render; no data is touched.
func (v *View) Rotate(dx, dy float64) {
	v.projection.Rotate(dx, dy, RotationSensitivity)
}

// Rotation returns the current (lambda, phi) rotation in degrees.
func (v *View) Rotation() [2]float64 { return v.projection.Rotation }

// PointerEnter highlights the country drawn under key, dims the others and
// shows its tooltip next to (x, y). It reports false for an unknown key.
func (v *View) PointerEnter(key string, x, y float64, now time.Time) bool {
	if v.shapes.Node(key) == nil {
		return false
	}
	v.hovered = key
	tr := scene.Over(now, hoverTransition)
	for _, n := range v.shapes.Nodes() {
		if n.Key == key {
			n.SetNum("opacity", 1, tr)
			n.SetNum("stroke-width", hoverStrokeW, tr)
			continue
		}
		n.SetNum("opacity", dimOpacity, tr)
		n.SetNum("stroke-width", 0, tr)
	}
	v.tooltip.Show(v.tooltipLines(key), x, y, now)
	return true
}

// PointerLeave undoes PointerEnter.
func (v *View) PointerLeave(now time.Time) {
	v.hovered = ""
	tr := scene.Over(now, hoverTransition)
	for _, n := range v.shapes.Nodes() {
		n.SetNum("opacity", 1, tr)
		n.SetNum("stroke-width", 0, tr)
	}
	v.tooltip.Hide(now)
}

// Hovered returns the key of the hovered country, or "".
func (v *View) Hovered() string { return v.hovered }

// TooltipLines returns the tooltip text.
func (v *View) TooltipLines() []string { return v.tooltip.Lines }

// Title returns the year label.
func (v *View) Title() string { return v.title }

// Fill returns the color key's shape is heading to.
func (v *View) Fill(key string) (string, bool) {
	n := v.shapes.Node(key)
	if n == nil {
		return "", false
	}
	return n.ColorTarget("fill"), true
}

// Opacity returns key's opacity at now.
func (v *View) Opacity(key string, now time.Time) float64 {
	n := v.shapes.Node(key)
	if n == nil {
		return 0
	}
	return n.Num("opacity", now)
}

// Len returns the number of country shapes.
func (v *View) Len() int { return v.shapes.Len() }

// Render writes the frame at now as a standalone SVG document.
func (v *View) Render(w io.Writer, now time.Time) error {
	ew := &scene.ErrWriter{W: w}
	c := svg.New(ew)
	c.Start(Width, Height, `class="globe"`)
	c.Group()

	c.Text(Width/2, Height-100, v.title, `class="x-label"`, `font-size="20px"`, `text-anchor="middle"`)

	c.Def()
	scene.VerticalGradient(c, v.gradientID, v.palette.Gradient())
	c.DefEnd()
	c.Rect(legendX, legendY, legendWidth, legendHeight, fmt.Sprintf(`fill="url(#%s)"`, v.gradientID))
	c.Gtransform(fmt.Sprintf("translate(%d,%d)", legendX+legendWidth, legendY))
	scene.AxisRight(c, 0, 0, legendHeight, scene.LinearTicks(v.legend, 10, func(t float64) string {
		return strconv.FormatFloat(t, 'g', -1, 64) + "℃"
	}))
	c.Gend()

	for _, n := range v.shapes.Nodes() {
		f, _ := n.Datum.(geo.Feature)
		d := v.projection.Path(f)
		if d == "" {
			continue
		}
		attrs := []string{
			`class="Country"`,
			fmt.Sprintf(`data-iso="%s"`, n.Key),
			fmt.Sprintf(`fill="%s"`, n.Color("fill", now)),
			fmt.Sprintf(`opacity="%s"`, scene.Fmt(n.Num("opacity", now))),
		}
		if sw := n.Num("stroke-width", now); sw > 0 {
			attrs = append(attrs, fmt.Sprintf(`stroke="%s"`, hoverStroke), fmt.Sprintf(`stroke-width="%spx"`, scene.Fmt(sw)))
		}
		c.Path(d, attrs...)
	}

	v.tooltip.Render(c, now)
	c.Gend()
	c.End()
	return ew.Err
}
