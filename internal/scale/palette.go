// Package scale maps data values to screen positions and colors.
package scale

import (
	"errors"
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Stop anchors one color of a palette at a data value.
type Stop struct {
	Value float64
	Color colorful.Color
}

// Palette is a piecewise-linear color scale over ascending stop values.
// Colors are blended in gamma-encoded RGB; values outside the first and last
// stop extrapolate the outer segment and clamp per channel.
type Palette struct {
	stops []Stop
}

// NewPalette builds a palette from matching value and hex color lists.
func NewPalette(values []float64, hexes []string) (*Palette, error) {
	if len(values) < 2 || len(values) != len(hexes) {
		return nil, errors.New("palette needs at least two stops and one color per stop")
	}
	stops := make([]Stop, len(values))
	for i, v := range values {
		if i > 0 && v <= values[i-1] {
			return nil, fmt.Errorf("palette stop %d (%g) not above previous", i, v)
		}
		c, err := colorful.Hex(hexes[i])
		if err != nil {
			return nil, fmt.Errorf("palette color %q: %w", hexes[i], err)
		}
		stops[i] = Stop{Value: v, Color: c}
	}
	return &Palette{stops: stops}, nil
}

// MustPalette is NewPalette that panics on error. Used for package-level
// palettes built from constants.
func MustPalette(values []float64, hexes []string) *Palette {
	p, err := NewPalette(values, hexes)
	if err != nil {
		panic(err)
	}
	return p
}

// Temperature is the single color definition shared by every view:
// -30°C green, 0°C gold, 35°C red.
var Temperature = MustPalette(
	[]float64{-30, 0, 35},
	[]string{"#008000", "#FFD700", "#FF4500"},
)

// At returns the color for v.
func (p *Palette) At(v float64) colorful.Color {
	i := 0
	for i < len(p.stops)-2 && v > p.stops[i+1].Value {
		i++
	}
	a, b := p.stops[i], p.stops[i+1]
	t := (v - a.Value) / (b.Value - a.Value)
	return a.Color.BlendRgb(b.Color, t).Clamped()
}

// Hex returns the color for v as "#rrggbb". ok is false for NaN, which has
// no color; callers substitute their own fallback.
func (p *Palette) Hex(v float64) (hex string, ok bool) {
	if math.IsNaN(v) {
		return "", false
	}
	return p.At(v).Hex(), true
}

// Domain returns the first and last stop values.
func (p *Palette) Domain() (lo, hi float64) {
	return p.stops[0].Value, p.stops[len(p.stops)-1].Value
}

// Stops returns a copy of the palette's stops.
func (p *Palette) Stops() []Stop {
	out := make([]Stop, len(p.stops))
	copy(out, p.stops)
	return out
}

// GradientStop is a stop expressed as a fraction of the palette's domain,
// ready for an SVG linearGradient.
type GradientStop struct {
	Offset float64
	Hex    string
}

// Gradient returns the stops as fractions from the low to the high end.
func (p *Palette) Gradient() []GradientStop {
	lo, hi := p.Domain()
	out := make([]GradientStop, len(p.stops))
	for i, s := range p.stops {
		out[i] = GradientStop{Offset: (s.Value - lo) / (hi - lo), Hex: s.Color.Hex()}
	}
	return out
}
