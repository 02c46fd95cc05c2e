package areachart

import (
	"math"
	"strings"

	"github.com/i474232898/climate-dashboard/internal/scene"
)

// point is a position in plot coordinates.
type point struct{ X, Y float64 }

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// slope3 is the tangent at b given its neighbours, limited so the curve
// between points never overshoots them (Steffen's method).
func slope3(a, b, c point) float64 {
	h0, h1 := b.X-a.X, c.X-b.X
	s0, s1 := (b.Y-a.Y)/h0, (c.Y-b.Y)/h1
	p := (s0*h1 + s1*h0) / (h0 + h1)
	t := (sign(s0) + sign(s1)) * math.Min(math.Min(math.Abs(s0), math.Abs(s1)), 0.5*math.Abs(p))
	if math.IsNaN(t) {
		return 0
	}
	return t
}

// slope2 is the one-sided tangent at an end point from the segment a-b and
// the tangent t at the other end.
func slope2(a, b point, t float64) float64 {
	h := b.X - a.X
	if h == 0 {
		return t
	}
	return (3*(b.Y-a.Y)/h - t) / 2
}

// tangents returns the monotone-X tangent at every point. pts must have at
// least three points.
func tangents(pts []point) []float64 {
	n := len(pts)
	t := make([]float64, n)
	for i := 1; i < n-1; i++ {
		t[i] = slope3(pts[i-1], pts[i], pts[i+1])
	}
	t[0] = slope2(pts[0], pts[1], t[1])
	t[n-1] = slope2(pts[n-2], pts[n-1], t[n-2])
	return t
}

func writePoint(b *strings.Builder, cmd byte, p point) {
	b.WriteByte(cmd)
	b.WriteString(scene.Fmt(p.X))
	b.WriteByte(',')
	b.WriteString(scene.Fmt(p.Y))
}

// monotoneX writes a path through pts, ordered by x, that is monotone
// between neighbouring points: cubic segments for three or more points, a
// straight segment for two.
func monotoneX(b *strings.Builder, pts []point) {
	if len(pts) == 0 {
		return
	}
	writePoint(b, 'M', pts[0])
	switch len(pts) {
	case 1:
		return
	case 2:
		writePoint(b, 'L', pts[1])
		return
	}
	t := tangents(pts)
	for i := 0; i < len(pts)-1; i++ {
		p0, p1 := pts[i], pts[i+1]
		dx := (p1.X - p0.X) / 3
		writePoint(b, 'C', point{p0.X + dx, p0.Y + dx*t[i]})
		writePoint(b, ' ', point{p1.X - dx, p1.Y - dx*t[i+1]})
		writePoint(b, ' ', p1)
	}
}

// linePath returns the smoothed line through pts.
func linePath(pts []point) string {
	var b strings.Builder
	monotoneX(&b, pts)
	return b.String()
}

// areaPath returns the region between the smoothed line through pts and the
// horizontal line y = base.
func areaPath(pts []point, base float64) string {
	if len(pts) == 0 {
		return ""
	}
	var b strings.Builder
	monotoneX(&b, pts)
	for i := len(pts) - 1; i >= 0; i-- {
		writePoint(&b, 'L', point{pts[i].X, base})
	}
	b.WriteByte('Z')
	return b.String()
}
