package geometry

import (
	"github.com/twpayne/go-geos"
)

// Error describes an invalid input record.
type Error struct {
	Ref          int    `json:"ref"`
	ErrorMessage string `json:"errorMessage"`
}

// Check reports every empty or invalid geometry of geoms by position.
func Check(geoms []*geos.Geom) []Error {
	var errs []Error
	for i, g := range geoms {
		switch {
		case g == nil || g.IsEmpty():
			errs = append(errs, Error{Ref: i, ErrorMessage: "empty geometry"})
		case !g.IsValid():
			errs = append(errs, Error{Ref: i, ErrorMessage: g.IsValidReason()})
		}
	}
	return errs
}

// Clean resolves self-intersections with a zero-distance buffer and returns
// the resulting polygons. Empty results are dropped.
func Clean(g *geos.Geom) []*geos.Geom {
	if g == nil || g.IsEmpty() {
		return nil
	}
	return FlattenOne(g.Buffer(0, 8), geos.TypeIDPolygon)
}

// CleanAll applies Clean to every geometry.
func CleanAll(geoms []*geos.Geom) []*geos.Geom {
	var out []*geos.Geom
	for _, g := range geoms {
		out = append(out, Clean(g)...)
	}
	return out
}
