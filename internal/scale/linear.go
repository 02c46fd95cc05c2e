package scale

import (
	"time"

	"github.com/aclements/go-moremath/scale"
)

// Linear maps a continuous domain onto a pixel range. Values outside the
// domain extrapolate.
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

// NewLinear returns a scale from [d0,d1] to [r0,r1].
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{D0: d0, D1: d1, R0: r0, R1: r1}
}

func (s Linear) normalized() (scale.Linear, bool) {
	if s.D0 <= s.D1 {
		return scale.Linear{Min: s.D0, Max: s.D1}, false
	}
	return scale.Linear{Min: s.D1, Max: s.D0}, true
}

// Map returns the range position of v. A degenerate domain maps everything
// to the middle of the range.
func (s Linear) Map(v float64) float64 {
	if s.D0 == s.D1 {
		return (s.R0 + s.R1) / 2
	}
	ls, flipped := s.normalized()
	t := ls.Map(v)
	if flipped {
		t = 1 - t
	}
	return s.R0 + t*(s.R1-s.R0)
}

// WithDomain returns a copy with a new domain and the same range.
func (s Linear) WithDomain(d0, d1 float64) Linear {
	s.D0, s.D1 = d0, d1
	return s
}

// Ticks returns at most max round tick values inside the domain, ascending.
func (s Linear) Ticks(max int) []float64 {
	if s.D0 == s.D1 {
		return []float64{s.D0}
	}
	ls, _ := s.normalized()
	major, _ := ls.Ticks(scale.TickOptions{Max: max})
	out := major[:0:0]
	for _, t := range major {
		if t >= ls.Min-1e-9 && t <= ls.Max+1e-9 {
			out = append(out, t)
		}
	}
	return out
}

// Band places categorical labels in equal bands with inner and outer
// padding given as a fraction of the step.
type Band struct {
	labels  []string
	index   map[string]int
	r0, r1  float64
	padding float64
}

// NewBand returns a band scale over labels spanning [r0,r1].
func NewBand(labels []string, r0, r1, padding float64) Band {
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		idx[l] = i
	}
	return Band{labels: labels, index: idx, r0: r0, r1: r1, padding: padding}
}

// Step is the distance between the starts of neighbouring bands.
func (b Band) Step() float64 {
	n := float64(len(b.labels))
	if n == 0 {
		return 0
	}
	return (b.r1 - b.r0) / (n - b.padding + 2*b.padding)
}

// Bandwidth is the width of each band.
func (b Band) Bandwidth() float64 {
	return b.Step() * (1 - b.padding)
}

// Pos returns the start of label's band.
func (b Band) Pos(label string) (float64, bool) {
	i, ok := b.index[label]
	if !ok {
		return 0, false
	}
	step := b.Step()
	start := b.r0 + (b.r1-b.r0-step*(float64(len(b.labels))-b.padding))/2
	return start + step*float64(i), true
}

// Labels returns the domain.
func (b Band) Labels() []string { return b.labels }

// Time maps instants linearly onto a pixel range.
type Time struct {
	lin Linear
}

// NewTime returns a time scale from [t0,t1] to [r0,r1].
func NewTime(t0, t1 time.Time, r0, r1 float64) Time {
	return Time{lin: NewLinear(float64(t0.Unix()), float64(t1.Unix()), r0, r1)}
}

// Map returns the range position of t.
func (s Time) Map(t time.Time) float64 {
	return s.lin.Map(float64(t.Unix()))
}
