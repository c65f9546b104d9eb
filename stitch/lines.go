package stitch

import (
	"github.com/bsaid97/go-polygon-stitcher/gapfill"
	"github.com/bsaid97/go-polygon-stitcher/geometry"
	"github.com/bsaid97/go-polygon-stitcher/pipeline"
	"github.com/bsaid97/go-polygon-stitcher/predicate"
	"github.com/bsaid97/go-polygon-stitcher/snapping"
	"github.com/bsaid97/go-polygon-stitcher/spatialindex"
	"github.com/bsaid97/go-polygon-stitcher/worker"
	"github.com/twpayne/go-geos"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func (s *Stitcher) conflateLines(u1, u2 *unitState, r *Result) error {
	var lines1, lines2 []*geos.Geom
	g := new(errgroup.Group)
	g.Go(func() (err error) {
		lines1, err = s.borderLines(u1)
		return err
	})
	g.Go(func() (err error) {
		lines2, err = s.borderLines(u2)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	rebuilt, err := s.rebuild(u1, u2, lines1, lines2)
	if err != nil {
		return err
	}
	return s.redistribute(u1, u2, rebuilt, r)
}

// borderLines turns the clipped border polygons of u into a dissolved line
// network. The parts are clipped to the area of interest, so their
// boundaries include the stretches lying exactly on its edge.
func (s *Stitcher) borderLines(u *unitState) ([]*geos.Geom, error) {
	parts := u.borderParts()
	if len(parts) == 0 {
		return nil, nil
	}

	lines, err := pipeline.Then(pipeline.From(u.unit.Name, parts, s.pipelineOptions()...), "Boundary",
		func(items []*geos.Geom, _ pipeline.ProgressFunc) ([]*geos.Geom, error) {
			return worker.Collect(s.pool, items, func(part *geos.Geom) ([]*geos.Geom, error) {
				return geometry.FlattenOne(part.Boundary(), geos.TypeIDLineString), nil
			})
		}).
		Chain("Dissolve", func(items []*geos.Geom, _ pipeline.ProgressFunc) ([]*geos.Geom, error) {
			return geometry.Dissolve(items)
		}).
		Execute()
	if err != nil {
		return nil, err
	}

	s.logger.Info("Border lines extracted",
		zap.String("unit", u.unit.Name),
		zap.Int("polygons", len(parts)),
		zap.Int("lines", len(lines)))
	return lines, nil
}

// rebuild snaps the PU1 lines onto the PU2 lines, nodes the merged network
// and polygonizes it. Only faces inside the PU1 area of interest that came
// from an actual border polygon are returned.
func (s *Stitcher) rebuild(u1, u2 *unitState, lines1, lines2 []*geos.Geom) ([]*geos.Geom, error) {
	snapped, err := snapping.SnapTo(lines1, lines2, s.snapTolerance,
		snapping.WithPool(s.pool), snapping.WithSearchMargin(s.searchMargin))
	if err != nil {
		return nil, err
	}

	network, err := pipeline.From("Border", snapped, s.pipelineOptions()...).
		Merge(lines2).
		Chain("Precision", s.precisionStage).
		Chain("Node", func(items []*geos.Geom, _ pipeline.ProgressFunc) ([]*geos.Geom, error) {
			if len(items) == 0 {
				return nil, nil
			}
			noded := geometry.Collect(geos.TypeIDMultiLineString, items).Node()
			return geometry.FlattenOne(noded, geos.TypeIDLineString), nil
		}).
		Chain("Precision", s.precisionStage).
		Execute()
	if err != nil {
		return nil, err
	}
	if len(network) == 0 {
		return nil, nil
	}

	graph := geometry.Collect(geos.TypeIDMultiLineString, network).UnaryUnion()
	faces, err := pipeline.From("Border", geometry.FlattenOne(geos.Polygonize([]*geos.Geom{graph}), geos.TypeIDPolygon), s.pipelineOptions()...).
		Chain("Intersect", predicate.Stage(s.pool, predicate.CoversOrOverlaps, u1.aoi, geos.TypeIDPolygon)).
		Execute()
	if err != nil {
		return nil, err
	}
	faces, err = s.sourced(faces, append(u1.borderParts(), u2.borderParts()...))
	if err != nil {
		return nil, err
	}
	if s.sliverArea > 0 {
		faces = s.removeSlivers(faces, u1.aoi, u2.aoi)
	}

	s.logger.Info("Border polygons rebuilt",
		zap.Int("lines", len(network)),
		zap.Int("polygons", len(faces)))
	return faces, nil
}

func (s *Stitcher) precisionStage(items []*geos.Geom, _ pipeline.ProgressFunc) ([]*geos.Geom, error) {
	return s.precision.ApplyAll(items), nil
}

// sourced keeps the faces whose interior point lies in one of sources.
// Faces enclosed by border polygons without belonging to any, such as
// holes, are dropped.
func (s *Stitcher) sourced(faces, sources []*geos.Geom) ([]*geos.Geom, error) {
	index := spatialindex.New[*geos.Geom]()
	for _, source := range sources {
		if err := index.Insert(spatialindex.EnvelopeOf(source), source); err != nil {
			return nil, err
		}
	}
	index.Build()

	return worker.Collect(s.pool, faces, func(face *geos.Geom) ([]*geos.Geom, error) {
		point := face.PointOnSurface()
		for _, source := range index.Query(spatialindex.EnvelopeOf(point)) {
			if source.Intersects(point) {
				return []*geos.Geom{face}, nil
			}
		}
		return nil, nil
	})
}

// removeSlivers drops faces that straddle both areas of interest while
// covering less than the sliver area on one of the sides.
func (s *Stitcher) removeSlivers(faces []*geos.Geom, aoi1, aoi2 *geos.Geom) []*geos.Geom {
	kept := make([]*geos.Geom, 0, len(faces))
	for _, face := range faces {
		if !geometry.InteriorsOverlap(face, aoi1) || !geometry.InteriorsOverlap(face, aoi2) {
			kept = append(kept, face)
			continue
		}
		if min(geometry.IntersectionArea(face, aoi1), geometry.IntersectionArea(face, aoi2)) >= s.sliverArea {
			kept = append(kept, face)
			continue
		}
		s.logger.Debug("Insignificant overlapping polygon removed", zap.Float64("area", face.Area()))
	}
	return kept
}

// redistribute hands the rebuilt border to PU1, fills the gaps of PU1 from
// its own border polygons and gives PU2 whatever border polygons PU1 did
// not claim.
func (s *Stitcher) redistribute(u1, u2 *unitState, rebuilt []*geos.Geom, r *Result) error {
	parts1 := u1.borderParts()
	parts2 := u2.borderParts()

	merged, err := pipeline.From(u1.unit.Name, u1.contained, s.pipelineOptions()...).
		Chain("MergeRebuilt", gapfill.Stage(rebuilt, gapfill.ExcludeBase(), gapfill.AreaThreshold, s.pool)).
		Execute()
	if err != nil {
		return err
	}
	r.Merged = len(merged) - len(u1.contained)

	pu1, err := pipeline.From(u1.unit.Name, merged, s.pipelineOptions()...).
		Chain("FillGaps", gapfill.Stage(parts1, gapfill.Exclude(rebuilt), gapfill.AreaThreshold, s.pool)).
		Execute()
	if err != nil {
		return err
	}

	claimed := append(append([]*geos.Geom(nil), rebuilt...), pu1...)
	pu2, err := pipeline.From(u2.unit.Name, u2.contained, s.pipelineOptions()...).
		Chain("FillGaps", gapfill.Stage(parts2, gapfill.Exclude(claimed), gapfill.StrictExclusion, s.pool)).
		Execute()
	if err != nil {
		return err
	}
	r.Removed = len(parts2) - (len(pu2) - len(u2.contained))

	r.PU1, r.PU2 = pu1, pu2
	s.logger.Info("Polygons merged into PU1", zap.Int("count", r.Merged))
	s.logger.Info("Gaps filled",
		zap.String("pu1", u1.unit.Name),
		zap.Int("pu1Filled", len(pu1)-len(merged)),
		zap.String("pu2", u2.unit.Name),
		zap.Int("pu2Filled", len(pu2)-len(u2.contained)))
	s.logger.Info("Polygons removed from PU2", zap.Int("count", r.Removed))
	return nil
}
