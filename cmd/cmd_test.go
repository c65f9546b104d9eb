package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bsaid97/go-polygon-stitcher/internal/geomtest"
	"github.com/bsaid97/go-polygon-stitcher/stitch"
	"github.com/bsaid97/go-polygon-stitcher/storage"
	"github.com/twpayne/go-geos"
)

type mapReader map[string][]*geos.Geom

func (m mapReader) Read(d storage.Descriptor) ([]*geos.Geom, error) {
	geoms, ok := m[d.FileName]
	if !ok {
		return nil, errors.New("missing")
	}
	return geoms, nil
}

func TestCheckSources(t *testing.T) {
	bowtie := geomtest.MustWKT(t, "POLYGON ((0 0, 1 1, 1 0, 0 1, 0 0))")
	r := mapReader{
		"a": {geomtest.Box(0, 0, 1, 1)},
		"b": {geomtest.Box(0, 0, 1, 1), bowtie},
	}

	findings, err := checkSources(r, []source{
		{"A", storage.Descriptor{FileName: "a"}},
		{"B", storage.Descriptor{FileName: "b"}},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got := countInvalid(findings); got != 1 {
		t.Errorf("Expected %v, got %v", 1, got)
	}
	if got := findings[1].errors[0].Ref; got != 1 {
		t.Errorf("Expected %v, got %v", 1, got)
	}

	var out bytes.Buffer
	printFindings(&out, findings)
	if !strings.Contains(out.String(), "Self-intersection") {
		t.Errorf("Expected the GEOS reason in the report, got %s", out.String())
	}

	if _, err := checkSources(r, []source{{"C", storage.Descriptor{FileName: "c"}}}); err == nil {
		t.Error("Expected an error for a missing source")
	}
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, "North", "South", &stitch.Result{
		PU1:     []*geos.Geom{geomtest.Box(0, 0, 1, 1)},
		Merged:  3,
		Removed: 2,
		Elapsed: 1500 * time.Millisecond,
	})

	for _, want := range []string{"North", "South", "Merged into North", "Removed from South", "1.0000", "1.5s"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected %q in summary, got %s", want, out.String())
		}
	}
}

func TestWaitForEnter(t *testing.T) {
	var out bytes.Buffer
	waitForEnter(strings.NewReader("\n"), &out)
	if !strings.Contains(out.String(), "PRESS ENTER") {
		t.Errorf("Expected %v, got %v", "PRESS ENTER", out.String())
	}
}

func TestSpinner(t *testing.T) {
	var out bytes.Buffer
	s := newSpinner(&out)
	s.Progress("PU1", "Load", 0.5)
	s.Stop()
	s.Progress("PU1", "Load", 1)

	got := out.String()
	if !strings.Contains(got, "PU1") || !strings.Contains(got, " 50%") {
		t.Errorf("Expected a status line, got %q", got)
	}
	if strings.Contains(got, "100%") {
		t.Errorf("Expected no output after Stop, got %q", got)
	}
}
