// Package scene is a retained drawing model for the dashboard views: keyed
// layers of nodes whose attributes animate toward their latest target, and
// helpers that serialize a frame to SVG.
package scene

import (
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Transition describes how an attribute change is animated. The zero value
// applies the change immediately.
type Transition struct {
	Start    time.Time
	Duration time.Duration
}

// Over returns a transition of d starting at now.
func Over(now time.Time, d time.Duration) Transition {
	return Transition{Start: now, Duration: d}
}

// progress returns eased completion of tr at now, in [0,1].
func (tr Transition) progress(now time.Time) float64 {
	if tr.Duration <= 0 {
		return 1
	}
	t := float64(now.Sub(tr.Start)) / float64(tr.Duration)
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return easeCubicInOut(t)
}

func easeCubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// Num is an animated number.
type Num struct {
	from, to float64
	tr       Transition
	set      bool
}

// Set retargets the number to v. The animation restarts from the value
// shown at tr.Start, so a change arriving mid-flight continues smoothly.
// Setting the current target again leaves the running animation alone.
func (n *Num) Set(v float64, tr Transition) {
	if !n.set {
		n.from, n.to, n.tr, n.set = v, v, Transition{}, true
		return
	}
	if v == n.to {
		return
	}
	n.from = n.At(tr.Start)
	n.to = v
	n.tr = tr
}

// At returns the value shown at now.
func (n *Num) At(now time.Time) float64 {
	p := n.tr.progress(now)
	if p >= 1 {
		return n.to
	}
	return n.from + (n.to-n.from)*p
}

// Target returns the value the number is heading to.
func (n *Num) Target() float64 { return n.to }

// Color is an animated color, blended in RGB.
type Color struct {
	from, to colorful.Color
	target   string
	tr       Transition
	set      bool
}

// Set retargets the color to hex ("#rrggbb"). An unparsable hex is shown as
// black, the way a browser renders an invalid fill.
func (c *Color) Set(hex string, tr Transition) {
	v, err := colorful.Hex(hex)
	if err != nil {
		v = colorful.Color{}
	}
	if !c.set {
		c.from, c.to, c.target, c.tr, c.set = v, v, hex, Transition{}, true
		return
	}
	if hex == c.target {
		return
	}
	c.from = c.at(tr.Start)
	c.to = v
	c.target = hex
	c.tr = tr
}

func (c *Color) at(now time.Time) colorful.Color {
	p := c.tr.progress(now)
	if p >= 1 {
		return c.to
	}
	return c.from.BlendRgb(c.to, p)
}

// At returns the color shown at now as "#rrggbb".
func (c *Color) At(now time.Time) string {
	if c.tr.progress(now) >= 1 {
		return c.to.Hex()
	}
	return c.at(now).Clamped().Hex()
}

// Target returns the hex the color is heading to, as it was given to Set.
func (c *Color) Target() string { return c.target }
