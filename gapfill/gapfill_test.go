package gapfill

import (
	"sync"
	"testing"

	"github.com/bsaid97/go-polygon-stitcher/internal/geomtest"
	"github.com/bsaid97/go-polygon-stitcher/pipeline"
	"github.com/bsaid97/go-polygon-stitcher/worker"
	"github.com/twpayne/go-geos"
)

func TestAdmission(t *testing.T) {
	exclusion := []*geos.Geom{geomtest.Box(0, 0, 1, 1)}
	tests := []struct {
		name      string
		candidate *geos.Geom
		policy    Policy
		admitted  bool
	}{
		{"noise overlap area threshold", geomtest.Box(0.991, 0, 2, 1), AreaThreshold, true},
		{"real overlap area threshold", geomtest.Box(0.98, 0, 2, 1), AreaThreshold, false},
		{"touching area threshold", geomtest.Box(1, 0, 2, 1), AreaThreshold, true},
		{"disjoint area threshold", geomtest.Box(5, 5, 6, 6), AreaThreshold, true},
		{"noise overlap strict", geomtest.Box(0.991, 0, 2, 1), StrictExclusion, false},
		{"touching strict", geomtest.Box(1, 0, 2, 1), StrictExclusion, true},
		{"contained strict", geomtest.Box(0.2, 0.2, 0.4, 0.4), StrictExclusion, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Fill(nil, []*geos.Geom{tt.candidate}, Exclude(exclusion), tt.policy)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := len(out) == 1; got != tt.admitted {
				t.Errorf("Expected admitted=%v, got %v", tt.admitted, got)
			}
		})
	}
}

func TestFillKeepsBase(t *testing.T) {
	base := []*geos.Geom{geomtest.Box(0, 0, 1, 1), geomtest.Box(1, 0, 2, 1)}
	candidates := []*geos.Geom{
		geomtest.Box(0.5, 0, 1.5, 1), // overlaps the base
		geomtest.Box(2, 0, 3, 1),     // fills a gap
	}

	out, err := Fill(base, candidates, ExcludeBase(), AreaThreshold, WithPool(worker.NewPool(2)))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("Expected 3 polygons, got %d", len(out))
	}
	if out[0] != base[0] || out[1] != base[1] {
		t.Error("Expected the base collection first and unchanged")
	}
	if !out[2].Equals(candidates[1]) {
		t.Errorf("Expected the gap filler, got %s", out[2].ToWKT())
	}
}

func TestExplicitExclusionIgnoresBase(t *testing.T) {
	base := []*geos.Geom{geomtest.Box(0, 0, 1, 1)}
	candidates := []*geos.Geom{geomtest.Box(0, 0, 1, 1)}

	out, err := Fill(base, candidates, Exclude(nil), StrictExclusion)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("Expected the duplicate to be admitted against an empty exclusion, got %d", len(out))
	}
}

func TestProgressInTenths(t *testing.T) {
	var mu sync.Mutex
	var reported []float64
	candidates := make([]*geos.Geom, 37)
	for i := range candidates {
		x := float64(i)
		candidates[i] = geomtest.Box(x, 0, x+1, 1)
	}

	_, err := Fill(nil, candidates, ExcludeBase(), AreaThreshold, WithProgress(func(fraction float64) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, fraction)
	}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(reported) != 10 {
		t.Fatalf("Expected 10 progress reports, got %d: %v", len(reported), reported)
	}
	if reported[9] != 1 {
		t.Errorf("Expected final report 1, got %v", reported[9])
	}
}

func TestStage(t *testing.T) {
	base := []*geos.Geom{geomtest.Box(0, 0, 1, 1)}
	p := pipeline.From("base", base).
		Chain("FillGaps", Stage([]*geos.Geom{geomtest.Box(1, 0, 2, 1)}, ExcludeBase(), StrictExclusion, worker.NewPool(1)))

	out, err := p.Execute()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("Expected 2, got %d", len(out))
	}
}
