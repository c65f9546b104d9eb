// Package snapping aligns line endpoints onto a target line network.
package snapping

import (
	"math"

	"github.com/bsaid97/go-polygon-stitcher/geometry"
	"github.com/bsaid97/go-polygon-stitcher/spatialindex"
	"github.com/bsaid97/go-polygon-stitcher/worker"
	"github.com/twpayne/go-geos"
)

// DefaultSearchMargin is how far around an endpoint candidate target
// vertices are looked up.
const DefaultSearchMargin = 17.0

// vertex is one target vertex tagged with the segment it belongs to.
type vertex struct {
	x, y    float64
	segment *geos.Geom
}

type settings struct {
	pool   *worker.Pool
	margin float64
}

type Option func(*settings)

func WithPool(pool *worker.Pool) Option {
	return func(s *settings) {
		s.pool = pool
	}
}

func WithSearchMargin(margin float64) Option {
	return func(s *settings) {
		s.margin = margin
	}
}

// Snapper holds the index over a target network and snaps line endpoints
// onto it. It is read-only after construction and safe for concurrent use.
type Snapper struct {
	index     *spatialindex.Index[vertex]
	tolerance float64
	margin    float64
}

// NewSnapper indexes every vertex of every segment of targets.
func NewSnapper(targets []*geos.Geom, tolerance, margin float64) (*Snapper, error) {
	index := spatialindex.New[vertex]()
	for _, target := range targets {
		for _, segment := range Explode(target) {
			env := spatialindex.EnvelopeOf(segment)
			for _, c := range geometry.Coords(segment) {
				if err := index.Insert(env, vertex{x: c[0], y: c[1], segment: segment}); err != nil {
					return nil, err
				}
			}
		}
	}
	index.Build()

	return &Snapper{index: index, tolerance: tolerance, margin: max(margin, tolerance)}, nil
}

// SnapPoint returns the coordinate x, y should move to and whether it moved.
// A target vertex within tolerance wins over a closer point on a segment.
func (s *Snapper) SnapPoint(x, y float64) (float64, float64, bool) {
	search := spatialindex.PointEnvelope(x, y).ExpandBy(s.margin)

	nearest, ok := s.index.Nearest(search, func(v vertex) float64 {
		return math.Hypot(v.x-x, v.y-y)
	})
	if !ok {
		return x, y, false
	}
	if math.Hypot(nearest.x-x, nearest.y-y) <= s.tolerance {
		return nearest.x, nearest.y, true
	}

	point := geos.NewPoint([]float64{x, y})
	var best *geos.Geom
	bestDistance := math.Inf(1)
	seen := make(map[*geos.Geom]struct{})
	for _, v := range s.index.Query(search) {
		if _, ok := seen[v.segment]; ok {
			continue
		}
		seen[v.segment] = struct{}{}
		if d := point.Distance(v.segment); d < bestDistance {
			best, bestDistance = v.segment, d
		}
	}
	if best == nil || bestDistance > s.tolerance {
		return x, y, false
	}

	onLine := point.NearestPoints(best)[1]
	return onLine[0], onLine[1], true
}

// Snap returns a copy of line with its start and end points snapped.
func (s *Snapper) Snap(line *geos.Geom) *geos.Geom {
	coords := geometry.Coords(line)
	if len(coords) < 2 {
		return line.Clone()
	}

	for _, i := range []int{0, len(coords) - 1} {
		if x, y, ok := s.SnapPoint(coords[i][0], coords[i][1]); ok {
			coords[i] = []float64{x, y}
		}
	}
	return geos.NewLineString(coords)
}

// SnapTo snaps the endpoints of every line onto targets within tolerance.
// The result keeps the order of lines and never aliases them.
func SnapTo(lines, targets []*geos.Geom, tolerance float64, opts ...Option) ([]*geos.Geom, error) {
	s := &settings{margin: DefaultSearchMargin}
	for _, opt := range opts {
		opt(s)
	}

	snapper, err := NewSnapper(targets, tolerance, s.margin)
	if err != nil {
		return nil, err
	}
	return worker.Map(s.pool, lines, func(line *geos.Geom) (*geos.Geom, error) {
		return snapper.Snap(line), nil
	})
}

// Explode splits a line or multi line into its single segments.
func Explode(g *geos.Geom) []*geos.Geom {
	var segments []*geos.Geom
	for _, line := range geometry.FlattenOne(g, geos.TypeIDLineString) {
		coords := geometry.Coords(line)
		for i := 1; i < len(coords); i++ {
			if coords[i-1][0] == coords[i][0] && coords[i-1][1] == coords[i][1] {
				continue
			}
			segments = append(segments, geos.NewLineString([][]float64{coords[i-1], coords[i]}))
		}
	}
	return segments
}
