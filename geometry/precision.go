package geometry

import (
	"fmt"

	"github.com/twpayne/go-geos"
)

// PrecisionModel is a fixed-scale coordinate grid. Coordinates are snapped to
// multiples of 1/Scale. A Scale of zero or less leaves coordinates untouched.
type PrecisionModel struct {
	Scale int
}

// Floating returns the precision model that performs no rounding.
func Floating() PrecisionModel {
	return PrecisionModel{}
}

func (pm PrecisionModel) IsFloating() bool {
	return pm.Scale <= 0
}

// GridSize returns the distance between two adjacent grid lines, or zero for
// a floating model.
func (pm PrecisionModel) GridSize() float64 {
	if pm.IsFloating() {
		return 0
	}
	return 1 / float64(pm.Scale)
}

func (pm PrecisionModel) String() string {
	if pm.IsFloating() {
		return "floating"
	}
	return fmt.Sprintf("fixed(scale=%d)", pm.Scale)
}

// Apply returns a copy of g snap-rounded onto the grid. The result is valid;
// polygons that collapse come back empty.
func (pm PrecisionModel) Apply(g *geos.Geom) *geos.Geom {
	if g == nil || g.IsEmpty() {
		return g
	}
	if pm.IsFloating() {
		return g.Clone()
	}
	return g.SetPrecision(pm.GridSize(), geos.PrecisionRuleNone)
}

// ApplyAll snaps every geometry of geoms onto the grid and drops the ones
// that collapse or come out invalid. A single-part geometry that is split by
// the rounding is returned as its parts.
func (pm PrecisionModel) ApplyAll(geoms []*geos.Geom) []*geos.Geom {
	out := make([]*geos.Geom, 0, len(geoms))
	for _, g := range geoms {
		precise := pm.Apply(g)
		if precise == nil || precise.IsEmpty() || !precise.IsValid() {
			continue
		}
		if t := g.TypeID(); !isCollection(t) && precise.TypeID() != t {
			out = appendFlattened(out, precise, t)
			continue
		}
		out = append(out, precise)
	}
	return out
}

// Intersection returns the intersection of a and b computed on the grid, so
// every vertex of the result, including new crossing points, lies on it.
func (pm PrecisionModel) Intersection(a, b *geos.Geom) *geos.Geom {
	if pm.IsFloating() {
		return a.Intersection(b)
	}
	return a.IntersectionPrec(b, pm.GridSize())
}
