// Package geo loads country polygons and draws them on an orthographic
// globe.
package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrNoFeatures is returned when a geometry file holds no polygon features.
var ErrNoFeatures = errors.New("no polygon features")

// DefaultISOProperty is the feature property carrying the ISO3 code.
const DefaultISOProperty = "iso_a3"

// Feature is one country outline keyed by its ISO3 code. Features are static
// once loaded.
type Feature struct {
	ISOCode  string
	Name     string
	Polygons []orb.Polygon
}

// ParseFeatures decodes a GeoJSON FeatureCollection. Features without
// polygonal geometry are skipped; features without the ISO property keep an
// empty code and always render with the fallback color.
func ParseFeatures(data []byte, isoProperty string) ([]Feature, error) {
	if isoProperty == "" {
		isoProperty = DefaultISOProperty
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	out := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		var polys []orb.Polygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			polys = []orb.Polygon{g}
		case orb.MultiPolygon:
			polys = []orb.Polygon(g)
		default:
			continue
		}
		out = append(out, Feature{
			ISOCode:  f.Properties.MustString(isoProperty, ""),
			Name:     featureName(f.Properties),
			Polygons: polys,
		})
	}
	if len(out) == 0 {
		return nil, ErrNoFeatures
	}
	return out, nil
}

func featureName(p geojson.Properties) string {
	for _, key := range []string{"name", "admin", "name_long"} {
		if s := p.MustString(key, ""); s != "" {
			return s
		}
	}
	return ""
}
