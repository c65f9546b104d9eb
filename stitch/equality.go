package stitch

import (
	"slices"

	"github.com/bsaid97/go-polygon-stitcher/spatialindex"
	"go.uber.org/zap"
)

// borderIndex indexes the raw border polygons of u by position.
func borderIndex(u *unitState) (*spatialindex.Index[int], error) {
	index := spatialindex.New[int]()
	for i, b := range u.border {
		if err := index.Insert(spatialindex.EnvelopeOf(b.raw), i); err != nil {
			return nil, err
		}
	}
	index.Build()
	return index, nil
}

// candidates returns the unclaimed border polygons of the indexed unit
// whose envelope meets b, in input order.
func candidates(index *spatialindex.Index[int], b borderPolygon, taken []bool) []int {
	found := index.Query(spatialindex.EnvelopeOf(b.raw))
	slices.Sort(found)
	return slices.DeleteFunc(found, func(j int) bool { return taken[j] })
}

// removeDuplicates drops every PU2 border polygon that is topologically
// equal to a PU1 border polygon. The PU1 copy is kept whole across both
// areas of interest.
func (s *Stitcher) removeDuplicates(u1, u2 *unitState, r *Result) error {
	index, err := borderIndex(u2)
	if err != nil {
		return err
	}
	both := u1.aoi.Union(u2.aoi)
	taken := make([]bool, len(u2.border))

	pu1 := slices.Clone(u1.contained)
	for _, b := range u1.border {
		duplicate := -1
		for _, j := range candidates(index, b, taken) {
			if u2.border[j].raw.Equals(b.raw) {
				duplicate = j
				break
			}
		}
		if duplicate < 0 {
			pu1 = append(pu1, b.parts...)
			continue
		}

		taken[duplicate] = true
		r.Removed++
		parts, anomaly := s.settle(u1.unit.Name, "duplicate", s.clip(b.raw, both))
		if anomaly {
			r.Anomalies++
		}
		pu1 = append(pu1, parts...)
	}

	pu2 := slices.Clone(u2.contained)
	for j, b := range u2.border {
		if !taken[j] {
			pu2 = append(pu2, b.parts...)
		}
	}

	r.PU1, r.PU2 = pu1, pu2
	s.logger.Info("Duplicated polygons removed from PU2", zap.Int("count", r.Removed))
	return nil
}
