package geo

import "math"

const radians = math.Pi / 180

// Orthographic is a rotatable orthographic projection of the unit sphere
// onto the screen, with the visible hemisphere clipped at the horizon.
type Orthographic struct {
	// Scale is the globe radius in pixels.
	Scale float64
	// Translate is the screen position of the globe center.
	Translate [2]float64
	// Rotation is (lambda, phi) in degrees: longitude spin, then tilt.
	Rotation [2]float64
}

// NewOrthographic centers a globe of the given radius at (cx, cy).
func NewOrthographic(scale, cx, cy float64) *Orthographic {
	return &Orthographic{Scale: scale, Translate: [2]float64{cx, cy}}
}

// Rotate applies a drag delta. The delta is scaled by sensitivity / Scale so
// a zoomed-in globe turns more slowly under the same pointer movement.
func (p *Orthographic) Rotate(dx, dy, sensitivity float64) {
	k := sensitivity / p.Scale
	p.Rotation[0] += dx * k
	p.Rotation[1] -= dy * k
}

// vec is a rotated point on the unit sphere: x points at the viewer, y to
// screen right and z to screen up.
type vec struct{ x, y, z float64 }

func (p *Orthographic) rotate(lon, lat float64) vec {
	lambda := (lon + p.Rotation[0]) * radians
	phi := lat * radians
	dphi := p.Rotation[1] * radians

	cosPhi := math.Cos(phi)
	x := math.Cos(lambda) * cosPhi
	y := math.Sin(lambda) * cosPhi
	z := math.Sin(phi)

	cosD, sinD := math.Cos(dphi), math.Sin(dphi)
	return vec{
		x: x*cosD - z*sinD,
		y: y,
		z: z*cosD + x*sinD,
	}
}

func (p *Orthographic) screen(v vec) (float64, float64) {
	return p.Translate[0] + p.Scale*v.y, p.Translate[1] - p.Scale*v.z
}

// Project maps a longitude/latitude in degrees to screen coordinates and
// reports whether the point lies on the visible hemisphere.
func (p *Orthographic) Project(lon, lat float64) (x, y float64, visible bool) {
	v := p.rotate(lon, lat)
	x, y = p.screen(v)
	return x, y, v.x > 0
}
