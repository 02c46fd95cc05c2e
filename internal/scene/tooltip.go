package scene

import (
	"fmt"
	"time"

	svg "github.com/ajstarks/svgo"
)

const (
	tooltipOpacity  = 0.9
	tooltipFade     = 100 * time.Millisecond
	tooltipOffsetX  = 10
	tooltipOffsetY  = -28
	tooltipLineStep = 12
)

// Tooltip is the floating label a view shows while a shape is hovered.
type Tooltip struct {
	Lines []string
	X, Y  float64

	opacity Num
	visible bool
}

// Show positions the tooltip next to the pointer at (x, y) and fades it in.
func (t *Tooltip) Show(lines []string, x, y float64, now time.Time) {
	t.Lines = lines
	t.X, t.Y = x, y
	t.visible = true
	if !t.opacity.set {
		t.opacity.Set(0, Transition{})
	}
	t.opacity.Set(tooltipOpacity, Over(now, tooltipFade))
}

// SetLines replaces the text without moving or fading the tooltip.
func (t *Tooltip) SetLines(lines []string) { t.Lines = lines }

// Hide fades the tooltip out.
func (t *Tooltip) Hide(now time.Time) {
	t.visible = false
	t.opacity.Set(0, Over(now, tooltipFade))
}

// Visible reports whether the tooltip is shown or fading in.
func (t *Tooltip) Visible() bool { return t.visible }

// Opacity returns the opacity at now.
func (t *Tooltip) Opacity(now time.Time) float64 { return t.opacity.At(now) }

// Render draws the tooltip if any of it is visible at now.
func (t *Tooltip) Render(c *svg.SVG, now time.Time) {
	op := t.opacity.At(now)
	if op <= 0 || len(t.Lines) == 0 {
		return
	}
	x := Px(t.X + tooltipOffsetX)
	y := Px(t.Y + tooltipOffsetY)
	width := 0
	for _, l := range t.Lines {
		if n := len([]rune(l)) * 6; n > width {
			width = n
		}
	}
	c.Group(`class="tooltip"`, fmt.Sprintf(`opacity="%.3f"`, op), `font-size="10px"`)
	c.Rect(x, y, width+8, len(t.Lines)*tooltipLineStep+6, "fill:#ffffff;stroke:#999999;stroke-width:0.5")
	for i, l := range t.Lines {
		c.Text(x+4, y+tooltipLineStep*(i+1), l)
	}
	c.Gend()
}
