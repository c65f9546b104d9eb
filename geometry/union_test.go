package geometry

import (
	"errors"
	"testing"

	"github.com/bsaid97/go-polygon-stitcher/internal/geomtest"
	"github.com/twpayne/go-geos"
)

func TestCascadedUnion(t *testing.T) {
	boxes := []*geos.Geom{
		geomtest.Box(0, 0, 1, 1),
		geomtest.Box(1, 0, 2, 1),
		geomtest.Box(2, 0, 3, 1),
		geomtest.Box(0, 1, 3, 2),
		geomtest.Box(0.5, 0.5, 1.5, 1.5),
	}

	union, err := CascadedUnion(boxes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !geomtest.SameArea(union, geomtest.Box(0, 0, 3, 2), 1e-9) {
		t.Errorf("Expected the 3x2 rectangle, got %s", union.ToWKT())
	}
}

func TestCascadedUnionEmpty(t *testing.T) {
	if _, err := CascadedUnion(nil); !errors.Is(err, ErrEmptyUnion) {
		t.Errorf("Expected ErrEmptyUnion, got %v", err)
	}
}

func TestDissolve(t *testing.T) {
	lines := []*geos.Geom{
		geomtest.Line([]float64{0, 0}, []float64{1, 0}),
		geomtest.Line([]float64{1, 0}, []float64{2, 0}),
		geomtest.Line([]float64{0, 0}, []float64{2, 0}),
	}

	dissolved, err := Dissolve(lines)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(dissolved) != 1 {
		t.Fatalf("Expected a single merged line, got %d", len(dissolved))
	}
	if length := dissolved[0].Length(); length != 2 {
		t.Errorf("Expected length 2, got %v", length)
	}
}
