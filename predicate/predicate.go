// Package predicate filters geometry collections against a prepared
// reference geometry in parallel.
package predicate

import (
	"github.com/bsaid97/go-polygon-stitcher/geometry"
	"github.com/bsaid97/go-polygon-stitcher/pipeline"
	"github.com/bsaid97/go-polygon-stitcher/worker"
	"github.com/twpayne/go-geos"
)

// Predicate is a spatial test of a geometry against a prepared reference.
type Predicate int

const (
	Contains Predicate = iota
	Crosses
	Overlaps
	CoversOrOverlaps
	// Within holds when the reference lies inside the geometry.
	Within
	// Straddles holds when the geometry shares interior with the reference
	// without being covered by it: it overlaps the reference or encloses it.
	Straddles
)

func (p Predicate) String() string {
	switch p {
	case Contains:
		return "Contains"
	case Crosses:
		return "Crosses"
	case Overlaps:
		return "Overlaps"
	case CoversOrOverlaps:
		return "CoversOrOverlaps"
	case Within:
		return "Within"
	case Straddles:
		return "Straddles"
	}
	return "Unknown"
}

// Eval tests g against the prepared reference.
func (p Predicate) Eval(reference *geos.PrepGeom, g *geos.Geom) bool {
	switch p {
	case Contains:
		return reference.Contains(g)
	case Crosses:
		return reference.Crosses(g)
	case Overlaps:
		return reference.Overlaps(g)
	case CoversOrOverlaps:
		return reference.Covers(g) || reference.Overlaps(g)
	case Within:
		return reference.Within(g)
	case Straddles:
		return reference.Overlaps(g) || (reference.Within(g) && !reference.Covers(g))
	}
	return false
}

// Filter returns the geometries of geoms for which pred holds against
// reference, flattened to parts of type typeID. The reference is prepared
// once and shared read-only by every worker. Output order is unspecified.
func Filter(pool *worker.Pool, pred Predicate, reference *geos.Geom, geoms []*geos.Geom, typeID geos.TypeID) ([]*geos.Geom, error) {
	prepared := reference.Prepare()
	return worker.Collect(pool, geoms, func(g *geos.Geom) ([]*geos.Geom, error) {
		if g == nil || g.IsEmpty() || !pred.Eval(prepared, g) {
			return nil, nil
		}
		return geometry.FlattenOne(g, typeID), nil
	})
}

// Stage wraps Filter as a pipeline stage.
func Stage(pool *worker.Pool, pred Predicate, reference *geos.Geom, typeID geos.TypeID) pipeline.Stage[*geos.Geom, *geos.Geom] {
	return func(items []*geos.Geom, _ pipeline.ProgressFunc) ([]*geos.Geom, error) {
		return Filter(pool, pred, reference, items, typeID)
	}
}
