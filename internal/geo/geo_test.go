package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"iso_a3": "ALB", "name": "Albania"},
     "geometry": {"type": "Polygon", "coordinates": [[[19,40],[21,40],[21,42],[19,42],[19,40]]]}},
    {"type": "Feature", "properties": {"iso_a3": "FRA", "admin": "France"},
     "geometry": {"type": "MultiPolygon", "coordinates": [[[[0,45],[5,45],[5,48],[0,48],[0,45]]], [[[9,42],[9.5,42],[9.5,43],[9,43],[9,42]]]]}},
    {"type": "Feature", "properties": {"iso_a3": "PNT"},
     "geometry": {"type": "Point", "coordinates": [0,0]}}
  ]
}`

func TestParseFeatures(t *testing.T) {
	fs, err := ParseFeatures([]byte(sampleGeoJSON), "")
	if err != nil {
		t.Fatalf("ParseFeatures() error = %v", err)
	}
	if len(fs) != 2 {
		t.Fatalf("got %d features, want 2 (point skipped)", len(fs))
	}
	if fs[0].ISOCode != "ALB" || fs[0].Name != "Albania" || len(fs[0].Polygons) != 1 {
		t.Errorf("fs[0] = %+v", fs[0])
	}
	if fs[1].ISOCode != "FRA" || fs[1].Name != "France" || len(fs[1].Polygons) != 2 {
		t.Errorf("fs[1] = %+v", fs[1])
	}
}

func TestParseFeaturesEmpty(t *testing.T) {
	_, err := ParseFeatures([]byte(`{"type":"FeatureCollection","features":[]}`), "")
	if !errors.Is(err, ErrNoFeatures) {
		t.Fatalf("ParseFeatures() error = %v, want ErrNoFeatures", err)
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestProject(t *testing.T) {
	p := NewOrthographic(250, 700, 400)

	tests := []struct {
		name     string
		lon, lat float64
		x, y     float64
		visible  bool
	}{
		{"center", 0, 0, 700, 400, true},
		{"45 east", 45, 0, 700 + 250*math.Sqrt2/2, 400, true},
		{"north", 0, 60, 700, 400 - 250*math.Sqrt(3)/2, true},
		{"behind east limb", 100, 0, 700 + 250*math.Sin(100*math.Pi/180), 400, false},
		{"far side", 180, 0, 700, 400, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, vis := p.Project(tt.lon, tt.lat)
			if math.Abs(x-tt.x) > 1e-6 || math.Abs(y-tt.y) > 1e-6 {
				t.Errorf("Project(%v, %v) = (%v, %v), want (%v, %v)", tt.lon, tt.lat, x, y, tt.x, tt.y)
			}
			if vis != tt.visible {
				t.Errorf("visible = %v, want %v", vis, tt.visible)
			}
		})
	}
}

func TestRotateScalesWithZoom(t *testing.T) {
	p := NewOrthographic(250, 0, 0)
	p.Rotate(10, 4, 75)
	if !near(p.Rotation[0], 3) || !near(p.Rotation[1], -1.2) {
		t.Fatalf("Rotation = %v, want [3 -1.2]", p.Rotation)
	}

	zoomed := NewOrthographic(500, 0, 0)
	zoomed.Rotate(10, 4, 75)
	if !near(zoomed.Rotation[0], 1.5) {
		t.Fatalf("zoomed Rotation = %v, want half the turn", zoomed.Rotation)
	}
}

func TestRotateBringsFarSideIntoView(t *testing.T) {
	p := NewOrthographic(250, 700, 400)
	if _, _, vis := p.Project(180, 0); vis {
		t.Fatal("180E visible before rotation")
	}
	// A 180 degree spin needs dx = 180 * scale / sensitivity.
	p.Rotate(180*250/75.0, 0, 75)
	x, y, vis := p.Project(180, 0)
	if !vis || math.Abs(x-700) > 1e-6 || math.Abs(y-400) > 1e-6 {
		t.Fatalf("after rotation Project(180, 0) = (%v, %v, %v)", x, y, vis)
	}
}

func square(lon0, lat0, lon1, lat1 float64) Feature {
	return Feature{Polygons: []orb.Polygon{{{
		{lon0, lat0}, {lon1, lat0}, {lon1, lat1}, {lon0, lat1}, {lon0, lat0},
	}}}}
}

func pathPoints(t *testing.T, d string) [][2]float64 {
	t.Helper()
	var pts [][2]float64
	for _, seg := range strings.FieldsFunc(d, func(r rune) bool { return r == 'M' || r == 'L' || r == 'Z' }) {
		xy := strings.Split(seg, ",")
		if len(xy) != 2 {
			t.Fatalf("bad segment %q in %q", seg, d)
		}
		x, err1 := strconv.ParseFloat(xy[0], 64)
		y, err2 := strconv.ParseFloat(xy[1], 64)
		if err1 != nil || err2 != nil {
			t.Fatalf("bad segment %q in %q", seg, d)
		}
		pts = append(pts, [2]float64{x, y})
	}
	return pts
}

func TestPathVisiblePolygon(t *testing.T) {
	p := NewOrthographic(250, 700, 400)
	d := p.Path(square(-10, -10, 10, 10))
	if !strings.HasPrefix(d, "M") || !strings.HasSuffix(d, "Z") {
		t.Fatalf("Path() = %q, want closed path", d)
	}
	if pts := pathPoints(t, d); len(pts) != 4 {
		t.Fatalf("Path() has %d points, want 4", len(pts))
	}
}

func TestPathHiddenPolygon(t *testing.T) {
	p := NewOrthographic(250, 700, 400)
	if d := p.Path(square(170, -10, 190, 10)); d != "" {
		t.Fatalf("Path() = %q, want empty for far side", d)
	}
}

func TestPathClipsAtHorizon(t *testing.T) {
	p := NewOrthographic(250, 700, 400)
	d := p.Path(square(60, -30, 120, 30))
	if d == "" {
		t.Fatal("Path() empty, want clipped polygon")
	}
	for _, pt := range pathPoints(t, d) {
		r := math.Hypot(pt[0]-700, pt[1]-400)
		if r > 250.1 {
			t.Errorf("point %v lies outside the globe (r=%v)", pt, r)
		}
	}
}
