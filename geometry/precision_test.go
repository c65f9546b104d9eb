package geometry

import (
	"math"
	"testing"

	"github.com/bsaid97/go-polygon-stitcher/internal/geomtest"
	"github.com/twpayne/go-geos"
)

func TestApplyAllDropsCollapsedSlivers(t *testing.T) {
	tests := []struct {
		name    string
		scale   int
		polygon *geos.Geom
	}{
		{"sliver narrower than the grid", 100, geomtest.Box(0.995, 0, 1, 1)},
		{"sliver far below the grid", 10, geomtest.Box(0.5, 0, 0.52, 1)},
		{"flat after rounding", 1, geomtest.Box(0, 0.1, 5, 0.3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := PrecisionModel{Scale: tt.scale}
			for _, g := range pm.ApplyAll([]*geos.Geom{tt.polygon}) {
				if !g.IsValid() || g.Area() == 0 {
					t.Errorf("Expected no degenerate polygon, got %s", g.ToWKT())
				}
			}
		})
	}
}

func TestIntersectionStaysOnGrid(t *testing.T) {
	pm := PrecisionModel{Scale: 10}
	a := geomtest.Box(0, 0, 1, 1)
	b := geomtest.MustWKT(t, "POLYGON((0.5 -1,1.5 0.37,0.5 1.5,0.5 -1))")

	clipped := pm.Intersection(a, b)
	if clipped.IsEmpty() || !clipped.IsValid() {
		t.Fatalf("Expected a valid intersection, got %s", clipped.ToWKT())
	}
	for _, c := range Coords(clipped.ExteriorRing()) {
		for _, v := range c {
			if snapped := math.Round(v*10) / 10; math.Abs(v-snapped) > 1e-9 {
				t.Errorf("Expected %v on the grid, got %v", snapped, v)
			}
		}
	}
}

func TestApplyPolygon(t *testing.T) {
	pm := PrecisionModel{Scale: 10}
	polygon := geomtest.Box(0.01, 0.02, 1.04, 0.98)

	precise := pm.Apply(polygon)
	if precise == nil {
		t.Fatal("Expected a polygon, got nil")
	}
	if !precise.Equals(geomtest.Box(0, 0, 1, 1)) {
		t.Errorf("Expected unit square, got %s", precise.ToWKT())
	}
	if polygon.Equals(precise) {
		t.Error("Expected the input to be left untouched")
	}
}

func TestApplyMultiLineString(t *testing.T) {
	pm := PrecisionModel{Scale: 2}
	lines := geomtest.MustWKT(t, "MULTILINESTRING((0.1 0.1,1.9 0.1),(3.3 3.3,4.4 4.4))")

	precise := pm.Apply(lines)
	expected := geomtest.MustWKT(t, "MULTILINESTRING((0 0,2 0),(3.5 3.5,4.5 4.5))")
	if !precise.Equals(expected) {
		t.Errorf("Expected %s, got %s", expected.ToWKT(), precise.ToWKT())
	}
}

func TestGridSize(t *testing.T) {
	if got := Floating().GridSize(); got != 0 {
		t.Errorf("Expected 0, got %v", got)
	}
	if got := (PrecisionModel{Scale: 4}).GridSize(); got != 0.25 {
		t.Errorf("Expected 0.25, got %v", got)
	}
}

func TestDegreesFromMeters(t *testing.T) {
	tests := []struct {
		meters   float64
		expected float64
	}{
		{0, 0},
		{111000, 1},
		{0.4, 0.4 / 111000},
	}
	for _, tt := range tests {
		if got := DegreesFromMeters(tt.meters); got != tt.expected {
			t.Errorf("Expected %v, got %v", tt.expected, got)
		}
	}
}
