// Package stitch conflates the shared border of two planning units.
//
// Both units are loaded and clipped to their own area of interest. Polygons
// that cross the area boundary are the border set. Their boundaries are
// snapped, noded and polygonized into one clean border which is given to
// the first unit, the priority unit. The remaining gaps of each unit are
// then filled from its original border polygons.
package stitch

import (
	"fmt"
	"time"

	"github.com/bsaid97/go-polygon-stitcher/geometry"
	"github.com/bsaid97/go-polygon-stitcher/pipeline"
	"github.com/bsaid97/go-polygon-stitcher/snapping"
	"github.com/bsaid97/go-polygon-stitcher/storage"
	"github.com/bsaid97/go-polygon-stitcher/worker"
	"github.com/twpayne/go-geos"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Unit is one planning unit: where its territory is, where its polygons
// come from and where the result goes.
type Unit struct {
	Name   string
	AOI    storage.Descriptor
	Input  storage.Descriptor
	Output storage.Descriptor
}

// Loader produces the polygons of a descriptor rounded to a precision
// model. Nothing is read before the returned processor executes.
type Loader interface {
	Load(dataName string, d storage.Descriptor, pm geometry.PrecisionModel) *pipeline.Processor[*geos.Geom]
}

// Sink persists a final polygon set.
type Sink interface {
	Save(geoms []*geos.Geom, d storage.Descriptor, pm geometry.PrecisionModel) error
}

// Strategy selects how border polygons of the two units are conflated.
type Strategy string

const (
	// StrategyLines rebuilds the border from snapped boundary lines.
	StrategyLines Strategy = "lines"
	// StrategyUnion merges every overlapping pair of border polygons into
	// the priority unit.
	StrategyUnion Strategy = "union"
)

// Result is the outcome of a run.
type Result struct {
	PU1 []*geos.Geom
	PU2 []*geos.Geom

	// Merged counts the polygons merged into PU1.
	Merged int
	// Removed counts the border polygons taken away from PU2.
	Removed int
	// Anomalies counts results that split into several parts where a
	// single polygon was expected.
	Anomalies int

	Coverage Coverage
	Elapsed  time.Duration
}

// Stitcher conflates the border of two planning units. It is configured
// once with New and may run any number of unit pairs.
type Stitcher struct {
	loader   Loader
	sink     Sink
	logger   *zap.Logger
	observer pipeline.Observer
	pool     *worker.Pool

	precision       geometry.PrecisionModel
	compareEquality bool
	strategy        Strategy
	snapTolerance   float64
	searchMargin    float64
	minPartArea     float64
	sliverArea      float64
}

// Option configures a Stitcher.
type Option func(*Stitcher)

func WithPrecision(pm geometry.PrecisionModel) Option {
	return func(s *Stitcher) {
		s.precision = pm
	}
}

// WithCompareTopologicalEquality switches to duplicate removal: a PU2
// border polygon equal to a PU1 border polygon is dropped and nothing is
// rebuilt.
func WithCompareTopologicalEquality(enabled bool) Option {
	return func(s *Stitcher) {
		s.compareEquality = enabled
	}
}

func WithStrategy(strategy Strategy) Option {
	return func(s *Stitcher) {
		s.strategy = strategy
	}
}

func WithSnapTolerance(tolerance float64) Option {
	return func(s *Stitcher) {
		s.snapTolerance = tolerance
	}
}

func WithSearchMargin(margin float64) Option {
	return func(s *Stitcher) {
		s.searchMargin = margin
	}
}

// WithMinPartArea sets the area a part of a fragmented result must exceed
// to be kept.
func WithMinPartArea(area float64) Option {
	return func(s *Stitcher) {
		s.minPartArea = area
	}
}

// WithSliverArea drops rebuilt polygons that straddle both areas of
// interest with less than area on either side. Zero disables it.
func WithSliverArea(area float64) Option {
	return func(s *Stitcher) {
		s.sliverArea = area
	}
}

func WithWorkers(n int) Option {
	return func(s *Stitcher) {
		s.pool = worker.NewPool(n)
	}
}

func WithObserver(observer pipeline.Observer) Option {
	return func(s *Stitcher) {
		s.observer = observer
	}
}

// New returns a stitcher reading through loader and writing through sink.
// A nil logger discards log output.
func New(loader Loader, sink Sink, logger *zap.Logger, opts ...Option) *Stitcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Stitcher{
		loader:        loader,
		sink:          sink,
		logger:        logger,
		pool:          worker.NewPool(0),
		strategy:      StrategyLines,
		snapTolerance: 1e-3,
		searchMargin:  snapping.DefaultSearchMargin,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run conflates pu1 and pu2, saves both results and reports what changed.
func (s *Stitcher) Run(pu1, pu2 Unit) (*Result, error) {
	start := time.Now()
	s.logger.Info("Stitching started",
		zap.String("pu1", pu1.Name),
		zap.String("pu2", pu2.Name),
		zap.String("precision", s.precision.String()),
		zap.String("strategy", string(s.strategy)),
		zap.Bool("compareTopologicalEquality", s.compareEquality))

	var u1, u2 *unitState
	g := new(errgroup.Group)
	g.Go(func() (err error) {
		u1, err = s.prepare(pu1)
		return err
	})
	g.Go(func() (err error) {
		u2, err = s.prepare(pu2)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Anomalies: u1.anomalies + u2.anomalies}
	var err error
	switch {
	case s.compareEquality:
		err = s.removeDuplicates(u1, u2, result)
	case s.strategy == StrategyUnion:
		err = s.mergeOverlapping(u1, u2, result)
	case s.strategy == StrategyLines:
		err = s.conflateLines(u1, u2, result)
	default:
		err = fmt.Errorf("unknown strategy %q", s.strategy)
	}
	if err != nil {
		return nil, err
	}

	g = new(errgroup.Group)
	g.Go(func() error {
		return s.sink.Save(result.PU1, pu1.Output, s.precision)
	})
	g.Go(func() error {
		return s.sink.Save(result.PU2, pu2.Output, s.precision)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger.Info("Saved PU outputs",
		zap.Int("pu1", len(result.PU1)),
		zap.Int("pu2", len(result.PU2)))

	result.Coverage, err = s.checkCoverage(u1, u2, result)
	if err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(start)
	s.logger.Info("Workflow finished",
		zap.Int("merged", result.Merged),
		zap.Int("removed", result.Removed),
		zap.Int("anomalies", result.Anomalies),
		zap.Duration("elapsed", result.Elapsed))
	return result, nil
}

func (s *Stitcher) pipelineOptions() []pipeline.Option {
	return []pipeline.Option{pipeline.WithLogger(s.logger), pipeline.WithObserver(s.observer)}
}
