package stitch

import (
	"errors"

	"github.com/bsaid97/go-polygon-stitcher/geometry"
	"github.com/bsaid97/go-polygon-stitcher/spatialindex"
	"github.com/bsaid97/go-polygon-stitcher/worker"
	"github.com/twpayne/go-geos"
	"go.uber.org/zap"
)

// Coverage describes how well the two outputs tile the clipped inputs.
type Coverage struct {
	// OverlapCount is the number of PU1/PU2 pairs sharing interior area.
	OverlapCount int
	OverlapArea  float64
	// LossArea is the clipped input area that neither output covers.
	LossArea float64
}

func (s *Stitcher) checkCoverage(u1, u2 *unitState, r *Result) (Coverage, error) {
	var report Coverage

	index := spatialindex.New[*geos.Geom]()
	for _, g := range r.PU2 {
		if err := index.Insert(spatialindex.EnvelopeOf(g), g); err != nil {
			return report, err
		}
	}
	index.Build()

	overlaps, err := worker.Collect(s.pool, r.PU1, func(g *geos.Geom) ([]float64, error) {
		var areas []float64
		for _, other := range index.Query(spatialindex.EnvelopeOf(g)) {
			if geometry.InteriorsOverlap(g, other) {
				areas = append(areas, geometry.IntersectionArea(g, other))
			}
		}
		return areas, nil
	})
	if err != nil {
		return report, err
	}
	report.OverlapCount = len(overlaps)
	for _, area := range overlaps {
		report.OverlapArea += area
	}

	report.LossArea, err = lostArea(append(u1.clipped(), u2.clipped()...), append(append([]*geos.Geom(nil), r.PU1...), r.PU2...))
	if err != nil {
		return report, err
	}

	s.logger.Info("Coverage validation finished",
		zap.Int("overlaps", report.OverlapCount),
		zap.Float64("overlapArea", report.OverlapArea),
		zap.Float64("lostArea", report.LossArea))
	return report, nil
}

func lostArea(inputs, outputs []*geos.Geom) (float64, error) {
	in, err := geometry.CascadedUnion(inputs)
	if errors.Is(err, geometry.ErrEmptyUnion) {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	out, err := geometry.CascadedUnion(outputs)
	if errors.Is(err, geometry.ErrEmptyUnion) {
		return in.Area(), nil
	} else if err != nil {
		return 0, err
	}
	return in.Difference(out).Area(), nil
}
