package geo

import (
	"math"
	"strconv"

	"github.com/paulmach/orb"
)

// arcStep is the angular spacing of points inserted along the horizon
// where a ring is clipped.
const arcStep = 5 * radians

// Path returns the SVG path data for f under p. Parts of f on the far
// hemisphere are cut at the horizon. An empty string means nothing of f is
// visible.
func (p *Orthographic) Path(f Feature) string {
	var buf []byte
	for _, poly := range f.Polygons {
		buf = p.appendPolygon(buf, poly)
	}
	return string(buf)
}

func (p *Orthographic) appendPolygon(buf []byte, poly orb.Polygon) []byte {
	for _, ring := range poly {
		buf = p.appendRing(buf, ring)
	}
	return buf
}

func (p *Orthographic) appendRing(buf []byte, ring orb.Ring) []byte {
	n := len(ring)
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	if n < 3 {
		return buf
	}

	vs := make([]vec, n)
	first := -1
	hidden := 0
	for i := 0; i < n; i++ {
		vs[i] = p.rotate(ring[i].Lon(), ring[i].Lat())
		if vs[i].x > 0 {
			if first < 0 {
				first = i
			}
		} else {
			hidden++
		}
	}
	if first < 0 {
		return buf
	}

	var pts [][2]float64
	emit := func(v vec) {
		x, y := p.screen(v)
		pts = append(pts, [2]float64{x, y})
	}

	if hidden == 0 {
		for _, v := range vs {
			emit(v)
		}
		return appendClosed(buf, pts)
	}

	// Walk from a visible vertex so every exit over the horizon is followed
	// by a matching entry before the walk ends.
	var exit vec
	for k := 0; k < n; k++ {
		a := vs[(first+k)%n]
		b := vs[(first+k+1)%n]
		aIn, bIn := a.x > 0, b.x > 0
		if aIn {
			emit(a)
		}
		switch {
		case aIn && !bIn:
			exit = horizon(a, b)
			emit(exit)
		case !aIn && bIn:
			entry := horizon(b, a)
			for _, v := range horizonArc(exit, entry) {
				emit(v)
			}
			emit(entry)
		}
	}
	return appendClosed(buf, pts)
}

// horizon returns where the chord from visible a to hidden b crosses the
// horizon plane, pushed back onto the sphere.
func horizon(a, b vec) vec {
	t := a.x / (a.x - b.x)
	y := a.y + t*(b.y-a.y)
	z := a.z + t*(b.z-a.z)
	r := math.Hypot(y, z)
	if r == 0 {
		return vec{}
	}
	return vec{x: 0, y: y / r, z: z / r}
}

// horizonArc returns the points strictly between from and to along the
// shorter way around the horizon circle.
func horizonArc(from, to vec) []vec {
	a0 := math.Atan2(from.z, from.y)
	a1 := math.Atan2(to.z, to.y)
	d := a1 - a0
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	for d < -math.Pi {
		d += 2 * math.Pi
	}
	steps := int(math.Abs(d) / arcStep)
	out := make([]vec, 0, steps)
	for i := 1; i < steps; i++ {
		a := a0 + d*float64(i)/float64(steps)
		out = append(out, vec{x: 0, y: math.Cos(a), z: math.Sin(a)})
	}
	return out
}

func appendClosed(buf []byte, pts [][2]float64) []byte {
	if len(pts) < 3 {
		return buf
	}
	for i, pt := range pts {
		if i == 0 {
			buf = append(buf, 'M')
		} else {
			buf = append(buf, 'L')
		}
		buf = strconv.AppendFloat(buf, pt[0], 'f', 1, 64)
		buf = append(buf, ',')
		buf = strconv.AppendFloat(buf, pt[1], 'f', 1, 64)
	}
	return append(buf, 'Z')
}
