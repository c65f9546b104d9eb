package stitch

import (
	"fmt"

	"github.com/bsaid97/go-polygon-stitcher/geometry"
	"github.com/bsaid97/go-polygon-stitcher/pipeline"
	"github.com/bsaid97/go-polygon-stitcher/predicate"
	"github.com/bsaid97/go-polygon-stitcher/worker"
	"github.com/twpayne/go-geos"
	"go.uber.org/zap"
)

// borderPolygon is an input polygon crossing the boundary of its area of
// interest. raw is the polygon as loaded, parts is raw clipped to the area.
type borderPolygon struct {
	raw     *geos.Geom
	parts   []*geos.Geom
	anomaly bool
}

// unitState is a loaded and classified planning unit.
type unitState struct {
	unit      Unit
	aoi       *geos.Geom
	contained []*geos.Geom
	border    []borderPolygon
	anomalies int
}

func (u *unitState) borderParts() []*geos.Geom {
	var parts []*geos.Geom
	for _, b := range u.border {
		parts = append(parts, b.parts...)
	}
	return parts
}

// clipped returns every polygon of the unit cut to its area of interest.
func (u *unitState) clipped() []*geos.Geom {
	out := append([]*geos.Geom(nil), u.contained...)
	return append(out, u.borderParts()...)
}

func (s *Stitcher) prepare(unit Unit) (*unitState, error) {
	aoiGeoms, err := s.loader.Load(unit.Name+" AOI", unit.AOI, s.precision).
		Chain("Clean", cleanStage).
		Execute()
	if err != nil {
		return nil, err
	}
	aoi, err := geometry.CascadedUnion(aoiGeoms)
	if err != nil {
		return nil, fmt.Errorf("%s: area of interest: %w", unit.Name, err)
	}

	inputs, err := s.loader.Load(unit.Name, unit.Input, s.precision).
		Chain("Check", s.checkStage(unit.Name)).
		Chain("Clean", cleanStage).
		Chain("Intersect", s.intersectStage(aoi)).
		Execute()
	if err != nil {
		return nil, err
	}

	u := &unitState{unit: unit, aoi: aoi}
	if err := s.classify(u, inputs); err != nil {
		return nil, fmt.Errorf("%s: classify: %w", unit.Name, err)
	}
	s.logger.Info("Planning unit prepared",
		zap.String("unit", unit.Name),
		zap.Int("intersecting", len(inputs)),
		zap.Int("contained", len(u.contained)),
		zap.Int("border", len(u.border)))
	return u, nil
}

// intersectStage keeps the polygons covered by or overlapping aoi, and
// those enclosing it entirely.
func (s *Stitcher) intersectStage(aoi *geos.Geom) pipeline.Stage[*geos.Geom, *geos.Geom] {
	prepared := aoi.Prepare()
	return func(items []*geos.Geom, _ pipeline.ProgressFunc) ([]*geos.Geom, error) {
		return worker.Collect(s.pool, items, func(g *geos.Geom) ([]*geos.Geom, error) {
			if predicate.CoversOrOverlaps.Eval(prepared, g) || predicate.Within.Eval(prepared, g) {
				return []*geos.Geom{g}, nil
			}
			return nil, nil
		})
	}
}

func cleanStage(items []*geos.Geom, _ pipeline.ProgressFunc) ([]*geos.Geom, error) {
	return geometry.CleanAll(items), nil
}

// checkStage logs invalid inputs and passes every item through unchanged.
func (s *Stitcher) checkStage(name string) pipeline.Stage[*geos.Geom, *geos.Geom] {
	return func(items []*geos.Geom, _ pipeline.ProgressFunc) ([]*geos.Geom, error) {
		for _, e := range geometry.Check(items) {
			s.logger.Warn("Invalid input geometry",
				zap.String("unit", name),
				zap.Int("ref", e.Ref),
				zap.String("reason", e.ErrorMessage))
		}
		return items, nil
	}
}

// classify splits the intersecting inputs into contained and border
// polygons and clips the border polygons to the area of interest.
func (s *Stitcher) classify(u *unitState, inputs []*geos.Geom) error {
	contained, err := predicate.Filter(s.pool, predicate.Contains, u.aoi, inputs, geos.TypeIDPolygon)
	if err != nil {
		return err
	}
	crossing, err := predicate.Filter(s.pool, predicate.Straddles, u.aoi, inputs, geos.TypeIDPolygon)
	if err != nil {
		return err
	}

	border, err := worker.Map(s.pool, crossing, func(raw *geos.Geom) (borderPolygon, error) {
		parts, anomaly := s.settle(u.unit.Name, "clip", s.clip(raw, u.aoi))
		return borderPolygon{raw: raw, parts: parts, anomaly: anomaly}, nil
	})
	if err != nil {
		return err
	}

	u.contained = contained
	u.border = border
	for _, b := range border {
		if b.anomaly {
			u.anomalies++
		}
	}
	return nil
}

// clip cuts g to area on the precision grid.
func (s *Stitcher) clip(g, area *geos.Geom) []*geos.Geom {
	return geometry.FlattenOne(s.precision.Intersection(g, area), geos.TypeIDPolygon)
}

// settle applies the anomaly policy to an operation that should have
// produced a single polygon. A fragmented result is logged and only parts
// larger than the minimum part area survive.
func (s *Stitcher) settle(unit, operation string, parts []*geos.Geom) ([]*geos.Geom, bool) {
	if len(parts) <= 1 {
		return parts, false
	}

	s.logger.Warn("Topology anomaly",
		zap.String("unit", unit),
		zap.String("operation", operation),
		zap.Int("parts", len(parts)),
		zap.Float64("area", geometry.TotalArea(parts)))

	kept := make([]*geos.Geom, 0, len(parts))
	for _, part := range parts {
		if part.Area() > s.minPartArea {
			kept = append(kept, part)
		}
	}
	return kept, true
}
