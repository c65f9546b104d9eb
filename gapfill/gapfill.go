// Package gapfill decides which candidate polygons may join a result set
// without overlapping territory that is already claimed.
package gapfill

import (
	"fmt"

	"github.com/bsaid97/go-polygon-stitcher/geometry"
	"github.com/bsaid97/go-polygon-stitcher/pipeline"
	"github.com/bsaid97/go-polygon-stitcher/spatialindex"
	"github.com/bsaid97/go-polygon-stitcher/worker"
	"github.com/twpayne/go-geos"
)

// NoiseArea is the largest overlap the area-threshold policy tolerates.
const NoiseArea = 0.01

// progressSteps is the number of progress reports per fill.
const progressSteps = 10

// Policy decides when an overlap with the exclusion set rejects a candidate.
type Policy int

const (
	// AreaThreshold rejects a candidate only when it shares at least
	// NoiseArea of interior with an excluded polygon.
	AreaThreshold Policy = iota
	// StrictExclusion rejects a candidate that shares any interior area
	// with an excluded polygon.
	StrictExclusion
)

func (p Policy) String() string {
	switch p {
	case AreaThreshold:
		return "AreaThreshold"
	case StrictExclusion:
		return "StrictExclusion"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// Exclusion is the claimed territory candidates are tested against: either
// an explicit set or the base collection itself.
type Exclusion struct {
	set    []*geos.Geom
	isBase bool
}

// Exclude uses set as the claimed territory.
func Exclude(set []*geos.Geom) Exclusion {
	return Exclusion{set: set}
}

// ExcludeBase uses the base collection as its own exclusion set.
func ExcludeBase() Exclusion {
	return Exclusion{isBase: true}
}

func (e Exclusion) resolve(base []*geos.Geom) []*geos.Geom {
	if e.isBase {
		return base
	}
	return e.set
}

type settings struct {
	pool   *worker.Pool
	report pipeline.ProgressFunc
}

// Option configures Fill.
type Option func(*settings)

// WithPool runs the admission tests on pool.
func WithPool(pool *worker.Pool) Option {
	return func(s *settings) {
		s.pool = pool
	}
}

func WithProgress(report pipeline.ProgressFunc) Option {
	return func(s *settings) {
		s.report = report
	}
}

// Fill returns base followed by every candidate admitted under policy.
func Fill(base, candidates []*geos.Geom, exclusion Exclusion, policy Policy, opts ...Option) ([]*geos.Geom, error) {
	admitted, err := Admit(base, candidates, exclusion, policy, opts...)
	if err != nil {
		return nil, err
	}

	out := make([]*geos.Geom, 0, len(base)+len(admitted))
	out = append(out, base...)
	return append(out, admitted...), nil
}

// Admit returns the candidates that Fill would add to base.
func Admit(base, candidates []*geos.Geom, exclusion Exclusion, policy Policy, opts ...Option) ([]*geos.Geom, error) {
	s := &settings{}
	for _, opt := range opts {
		opt(s)
	}
	if s.pool == nil {
		s.pool = worker.NewPool(0)
	}

	index := spatialindex.New[*geos.Geom]()
	for _, g := range exclusion.resolve(base) {
		if g == nil || g.IsEmpty() {
			continue
		}
		if err := index.Insert(spatialindex.EnvelopeOf(g), g); err != nil {
			return nil, err
		}
	}
	index.Build()

	tracker := worker.NewTracker(len(candidates), progressSteps, s.report)
	admitted, err := worker.Collect(s.pool, candidates, func(candidate *geos.Geom) ([]*geos.Geom, error) {
		defer tracker.Increment()
		if candidate == nil || candidate.IsEmpty() {
			return nil, nil
		}
		for _, excluded := range index.Query(spatialindex.EnvelopeOf(candidate)) {
			if rejects(policy, excluded, candidate) {
				return nil, nil
			}
		}
		return []*geos.Geom{candidate}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fill gaps (%s): %w", policy, err)
	}
	tracker.Done()
	return admitted, nil
}

func rejects(policy Policy, excluded, candidate *geos.Geom) bool {
	if !geometry.InteriorsOverlap(excluded, candidate) {
		return false
	}
	if policy == StrictExclusion {
		return true
	}
	return geometry.IntersectionArea(excluded, candidate) >= NoiseArea
}

// Stage wraps Fill as a pipeline stage over the base collection.
func Stage(candidates []*geos.Geom, exclusion Exclusion, policy Policy, pool *worker.Pool) pipeline.Stage[*geos.Geom, *geos.Geom] {
	return func(base []*geos.Geom, report pipeline.ProgressFunc) ([]*geos.Geom, error) {
		return Fill(base, candidates, exclusion, policy, WithPool(pool), WithProgress(report))
	}
}
