package stitch

import (
	"slices"

	"github.com/bsaid97/go-polygon-stitcher/geometry"
	"github.com/twpayne/go-geos"
	"go.uber.org/zap"
)

// mergeOverlapping unions every PU1 border polygon with the PU2 border
// polygons it overlaps and removes those from PU2.
func (s *Stitcher) mergeOverlapping(u1, u2 *unitState, r *Result) error {
	index, err := borderIndex(u2)
	if err != nil {
		return err
	}
	taken := make([]bool, len(u2.border))

	pu1 := slices.Clone(u1.contained)
	for _, b := range u1.border {
		pieces := slices.Clone(b.parts)
		matched := 0
		for _, j := range candidates(index, b, taken) {
			other := u2.border[j]
			if !geometry.InteriorsOverlap(other.raw, b.raw) {
				continue
			}
			taken[j] = true
			matched++
			pieces = append(pieces, other.parts...)
		}
		if matched == 0 || len(pieces) == 0 {
			pu1 = append(pu1, b.parts...)
			continue
		}

		union, err := geometry.CascadedUnion(pieces)
		if err != nil {
			return err
		}
		parts, anomaly := s.settle(u1.unit.Name, "union", geometry.FlattenOne(union, geos.TypeIDPolygon))
		if anomaly {
			r.Anomalies++
		}
		pu1 = append(pu1, parts...)
		r.Merged++
		r.Removed += matched
	}

	pu2 := slices.Clone(u2.contained)
	for j, b := range u2.border {
		if !taken[j] {
			pu2 = append(pu2, b.parts...)
		}
	}

	r.PU1, r.PU2 = pu1, pu2
	s.logger.Info("Polygons merged into PU1", zap.Int("count", r.Merged))
	s.logger.Info("Polygons removed from PU2", zap.Int("count", r.Removed))
	return nil
}
