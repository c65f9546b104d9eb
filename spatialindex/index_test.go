package spatialindex

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/bsaid97/go-polygon-stitcher/internal/geomtest"
	"golang.org/x/sync/errgroup"
)

func TestQuery(t *testing.T) {
	ix := New[int]()
	for i := range 200 {
		x := float64(i)
		if err := ix.Insert(Envelope{MinX: x, MinY: 0, MaxX: x + 0.5, MaxY: 1}, i); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	tests := []struct {
		name     string
		env      Envelope
		expected []int
	}{
		{"single", Envelope{MinX: 10.1, MinY: 0.1, MaxX: 10.2, MaxY: 0.2}, []int{10}},
		{"touching edge", Envelope{MinX: 10.5, MinY: 0, MaxX: 10.7, MaxY: 1}, []int{10}},
		{"span", Envelope{MinX: 10.6, MinY: 0, MaxX: 12.2, MaxY: 1}, []int{11, 12}},
		{"point", PointEnvelope(42, 1), []int{42}},
		{"miss", Envelope{MinX: 0, MinY: 5, MaxX: 300, MaxY: 6}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ix.Query(tt.env)
			sort.Ints(got)
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Expected %v, got %v", tt.expected, got)
				}
			}
		})
	}
}

func TestInsertAfterQuery(t *testing.T) {
	ix := New[string]()
	if err := ix.Insert(PointEnvelope(0, 0), "a"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	ix.Query(PointEnvelope(0, 0))

	if err := ix.Insert(PointEnvelope(1, 1), "b"); !errors.Is(err, ErrFrozen) {
		t.Errorf("Expected ErrFrozen, got %v", err)
	}
	if ix.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", ix.Len())
	}
}

type point struct{ x, y float64 }

func TestNearest(t *testing.T) {
	ix := New[point]()
	for _, p := range []point{{0, 0}, {1, 1}, {3, 3}, {10, 10}} {
		if err := ix.Insert(PointEnvelope(p.x, p.y), p); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	query := point{2.9, 2.8}
	distance := func(p point) float64 { return math.Hypot(p.x-query.x, p.y-query.y) }

	got, ok := ix.Nearest(PointEnvelope(query.x, query.y).ExpandBy(5), distance)
	if !ok || got != (point{3, 3}) {
		t.Errorf("Expected {3 3}, got %v (%v)", got, ok)
	}

	// Nothing within the envelope: falls back to the tree's nearest neighbour.
	got, ok = ix.Nearest(PointEnvelope(9, 9.5), distance)
	if !ok || got != (point{10, 10}) {
		t.Errorf("Expected {10 10}, got %v (%v)", got, ok)
	}
}

func TestNearestEmpty(t *testing.T) {
	ix := New[int]()
	if _, ok := ix.Nearest(PointEnvelope(0, 0).ExpandBy(1), func(int) float64 { return 0 }); ok {
		t.Error("Expected an empty index to report no nearest payload")
	}
}

func TestEnvelopeOf(t *testing.T) {
	env := EnvelopeOf(geomtest.Box(1, 2, 3, 4))
	if env != (Envelope{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}) {
		t.Errorf("Expected [1 2 3 4], got %+v", env)
	}
	if x, y := env.Center(); x != 2 || y != 3 {
		t.Errorf("Expected centre (2, 3), got (%v, %v)", x, y)
	}
}

func TestConcurrentReaders(t *testing.T) {
	ix := New[point]()
	for i := range 100 {
		p := point{float64(i), float64(i)}
		if err := ix.Insert(PointEnvelope(p.x, p.y), p); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	var g errgroup.Group
	for i := range 100 {
		g.Go(func() error {
			x := float64(i)
			found := ix.Query(PointEnvelope(x, x).ExpandBy(0.5))
			if len(found) != 1 || found[0] != (point{x, x}) {
				return fmt.Errorf("query %d: expected {%v %v}, got %v", i, x, x, found)
			}
			query := point{x + 0.2, x + 0.1}
			nearest, ok := ix.Nearest(PointEnvelope(query.x, query.y).ExpandBy(1.5), func(p point) float64 {
				return math.Hypot(p.x-query.x, p.y-query.y)
			})
			if !ok || nearest != (point{x, x}) {
				return fmt.Errorf("nearest %d: expected {%v %v}, got %v", i, x, x, nearest)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Error(err)
	}
}
