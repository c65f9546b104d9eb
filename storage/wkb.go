package storage

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	"github.com/twpayne/go-geos"
)

// toGEOS converts a go-geom geometry through WKB.
func toGEOS(t geom.T) (*geos.Geom, error) {
	data, err := wkb.Marshal(t, wkb.NDR)
	if err != nil {
		return nil, fmt.Errorf("failed to encode geometry: %w", err)
	}
	g, err := geos.NewGeomFromWKB(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode geometry: %w", err)
	}
	return g, nil
}
