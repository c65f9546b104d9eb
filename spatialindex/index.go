// Package spatialindex provides a bulk-loaded R-tree over envelope-keyed
// payloads.
package spatialindex

import (
	"errors"
	"math"
	"sync"

	"github.com/dhconnelly/rtreego"
)

// ErrFrozen is returned by Insert once the index has been built.
var ErrFrozen = errors.New("spatial index is frozen: insert after the first query")

const (
	minChildren = 25
	maxChildren = 50
)

type entry[T any] struct {
	bounds  rtreego.Rect
	payload T
}

func (e *entry[T]) Bounds() rtreego.Rect {
	return e.bounds
}

// Index is built once and queried many times. Inserts are accepted until
// the index is frozen by Build or by the first query; afterwards the tree is
// immutable and safe for concurrent queries.
type Index[T any] struct {
	mu      sync.Mutex
	pending []rtreego.Spatial
	frozen  bool

	once sync.Once
	tree *rtreego.Rtree
}

// New creates an empty index.
func New[T any]() *Index[T] {
	return &Index[T]{}
}

// Insert adds payload under env. It fails with ErrFrozen once the index has
// been built.
func (ix *Index[T]) Insert(env Envelope, payload T) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.frozen {
		return ErrFrozen
	}
	ix.pending = append(ix.pending, &entry[T]{bounds: env.rect(), payload: payload})
	return nil
}

// Build freezes the index and bulk-loads the tree.
func (ix *Index[T]) Build() {
	ix.once.Do(func() {
		ix.mu.Lock()
		defer ix.mu.Unlock()
		ix.frozen = true
		ix.tree = rtreego.NewTree(2, minChildren, maxChildren, ix.pending...)
		ix.pending = nil
	})
}

// Len returns the number of indexed payloads.
func (ix *Index[T]) Len() int {
	ix.Build()
	return ix.tree.Size()
}

// Query returns every payload whose envelope intersects env. Results may
// over-approximate; callers apply exact geometric tests.
func (ix *Index[T]) Query(env Envelope) []T {
	ix.Build()
	found := ix.tree.SearchIntersect(env.rect())
	out := make([]T, 0, len(found))
	for _, s := range found {
		out = append(out, s.(*entry[T]).payload)
	}
	return out
}

// Nearest returns the payload closest by distance among those whose envelope
// intersects env. When env holds nothing the tree's nearest neighbour to the
// centre of env is returned instead. The boolean is false only for an empty
// index.
func (ix *Index[T]) Nearest(env Envelope, distance func(T) float64) (T, bool) {
	candidates := ix.Query(env)
	if len(candidates) == 0 {
		var zero T
		if ix.Len() == 0 {
			return zero, false
		}
		x, y := env.Center()
		nearest := ix.tree.NearestNeighbor(rtreego.Point{x, y})
		if nearest == nil {
			return zero, false
		}
		return nearest.(*entry[T]).payload, true
	}

	best, bestDistance := candidates[0], math.Inf(1)
	for _, candidate := range candidates {
		if d := distance(candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best, true
}
