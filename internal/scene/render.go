package scene

import (
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
	"github.com/google/uuid"

	"github.com/i474232898/climate-dashboard/internal/scale"
)

const tickSize = 6

// NewID returns a document-unique element id, so that several instances of
// a view can share one page without their gradients colliding.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// Px rounds a coordinate to whole pixels.
func Px(v float64) int { return int(math.Round(v)) }

// Fmt formats a coordinate for attribute text.
func Fmt(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// Tick is one labelled axis position.
type Tick struct {
	Pos   float64
	Label string
}

// LinearTicks places round values of s's domain on its range.
func LinearTicks(s scale.Linear, max int, format func(float64) string) []Tick {
	if format == nil {
		format = func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	}
	vals := s.Ticks(max)
	out := make([]Tick, len(vals))
	for i, v := range vals {
		out[i] = Tick{Pos: s.Map(v), Label: format(v)}
	}
	return out
}

// AxisBottom draws a horizontal axis from x0 to x1 at y with labels below.
func AxisBottom(c *svg.SVG, x0, x1, y float64, ticks []Tick) {
	c.Group(`class="x axis"`, `font-size="10"`, `text-anchor="middle"`)
	c.Line(Px(x0), Px(y), Px(x1), Px(y), "stroke:#000000")
	for _, t := range ticks {
		c.Line(Px(t.Pos), Px(y), Px(t.Pos), Px(y)+tickSize, "stroke:#000000")
		c.Text(Px(t.Pos), Px(y)+tickSize+12, t.Label)
	}
	c.Gend()
}

// AxisLeft draws a vertical axis from y0 to y1 at x with labels to the left.
func AxisLeft(c *svg.SVG, x, y0, y1 float64, ticks []Tick) {
	c.Group(`class="y axis"`, `font-size="10"`, `text-anchor="end"`)
	c.Line(Px(x), Px(y0), Px(x), Px(y1), "stroke:#000000")
	for _, t := range ticks {
		c.Line(Px(x)-tickSize, Px(t.Pos), Px(x), Px(t.Pos), "stroke:#000000")
		c.Text(Px(x)-tickSize-3, Px(t.Pos), t.Label, `dy="0.32em"`)
	}
	c.Gend()
}

// AxisRight draws a vertical axis from y0 to y1 at x with labels to the right.
func AxisRight(c *svg.SVG, x, y0, y1 float64, ticks []Tick) {
	c.Group(`class="y axis"`, `font-size="10"`, `text-anchor="start"`)
	c.Line(Px(x), Px(y0), Px(x), Px(y1), "stroke:#000000")
	for _, t := range ticks {
		c.Line(Px(x), Px(t.Pos), Px(x)+tickSize, Px(t.Pos), "stroke:#000000")
		c.Text(Px(x)+tickSize+3, Px(t.Pos), t.Label, `dy="0.32em"`)
	}
	c.Gend()
}

// VerticalGradient defines a top-to-bottom gradient in bounding-box units.
// stops run from the low end of the palette, which is drawn at the bottom.
func VerticalGradient(c *svg.SVG, id string, stops []scale.GradientStop) {
	oc := make([]svg.Offcolor, len(stops))
	for i := range stops {
		s := stops[len(stops)-1-i]
		oc[i] = svg.Offcolor{Offset: uint8(math.Round((1 - s.Offset) * 100)), Color: s.Hex, Opacity: 1}
	}
	c.LinearGradient(id, 0, 0, 0, 100, oc)
}

// UserSpaceGradient writes a vertical gradient in user coordinates running
// from y1 (palette low end) to y2 (palette high end). Unlike a bounding-box
// gradient it stays anchored to data values when the filled shape changes
// size.
func UserSpaceGradient(w io.Writer, id string, y1, y2 float64, stops []scale.GradientStop) {
	fmt.Fprintf(w, `<linearGradient id="%s" gradientUnits="userSpaceOnUse" x1="0" y1="%s" x2="0" y2="%s">`+"\n", id, Fmt(y1), Fmt(y2))
	for _, s := range stops {
		fmt.Fprintf(w, `<stop offset="%s%%" stop-color="%s"/>`+"\n", Fmt(s.Offset*100), s.Hex)
	}
	fmt.Fprintln(w, `</linearGradient>`)
}

// ErrWriter remembers the first write error so drawing code, which ignores
// errors, can report one at the end.
type ErrWriter struct {
	W   io.Writer
	Err error
}

func (e *ErrWriter) Write(p []byte) (int, error) {
	if e.Err != nil {
		return 0, e.Err
	}
	n, err := e.W.Write(p)
	if err != nil {
		e.Err = err
	}
	return n, err
}
