package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geos"
)

// ReadGeoJSON returns the geometries of every feature of a GeoJSON
// FeatureCollection. Features without a geometry are skipped.
func ReadGeoJSON(path string) ([]*geos.Geom, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to decode feature collection: %w", err)
	}

	geoms := make([]*geos.Geom, 0, len(fc.Features))
	for i, feature := range fc.Features {
		if feature.Geometry == nil {
			continue
		}
		g, err := toGEOS(feature.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		geoms = append(geoms, g)
	}
	return geoms, nil
}

// EncodeGeoJSON renders geoms as a FeatureCollection. Every feature carries
// a sequential id and the layer name as a property.
func EncodeGeoJSON(layer string, geoms []*geos.Geom) ([]byte, error) {
	fc := geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(geoms))}
	for i, g := range geoms {
		t, err := wkb.Unmarshal(g.ToWKB())
		if err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         strconv.Itoa(i + 1),
			Geometry:   t,
			Properties: map[string]interface{}{"layer": layer},
		})
	}
	return json.Marshal(&fc)
}

// WriteGeoJSON writes geoms as a FeatureCollection to path.
func WriteGeoJSON(path, layer string, geoms []*geos.Geom) error {
	data, err := EncodeGeoJSON(layer, geoms)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
