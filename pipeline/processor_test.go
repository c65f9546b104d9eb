package pipeline

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

type recorder struct {
	events []string
	last   map[string]float64
}

func (r *recorder) Progress(dataName, stage string, fraction float64) {
	if r.last == nil {
		r.last = map[string]float64{}
	}
	key := dataName + "/" + stage
	if prev, ok := r.last[key]; ok && fraction < prev {
		r.events = append(r.events, "regressed:"+key)
	}
	r.last[key] = fraction
	r.events = append(r.events, key)
}

func TestLazyExecution(t *testing.T) {
	loads := 0
	p := Load("numbers", "Load", func(ProgressFunc) ([]int, error) {
		loads++
		return []int{1, 2, 3}, nil
	})
	doubled := p.Chain("Double", func(items []int, _ ProgressFunc) ([]int, error) {
		out := make([]int, len(items))
		for i, v := range items {
			out[i] = v * 2
		}
		return out, nil
	})

	if loads != 0 {
		t.Fatalf("Expected no work before Execute, got %d loads", loads)
	}

	for range 2 {
		out, err := doubled.Execute()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(out) != 3 || out[2] != 6 {
			t.Errorf("Expected [2 4 6], got %v", out)
		}
	}
	if loads != 2 {
		t.Errorf("Expected every Execute to rerun the chain, got %d loads", loads)
	}
}

func TestThenChangesType(t *testing.T) {
	p := From("numbers", []int{1, 22, 333})
	lengths := Then(p, "Format", func(items []int, _ ProgressFunc) ([]string, error) {
		out := make([]string, len(items))
		for i, v := range items {
			out[i] = strconv.Itoa(v)
		}
		return out, nil
	})

	out, err := lengths.Execute()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if strings.Join(out, ",") != "1,22,333" {
		t.Errorf("Expected 1,22,333, got %v", out)
	}
}

func TestErrorIsAtomic(t *testing.T) {
	failure := errors.New("broken stage")
	reached := false
	p := From("numbers", []int{1, 2}).
		Chain("Fail", func([]int, ProgressFunc) ([]int, error) { return []int{1}, failure }).
		Chain("After", func(items []int, _ ProgressFunc) ([]int, error) {
			reached = true
			return items, nil
		})

	out, err := p.Execute()
	if !errors.Is(err, failure) {
		t.Errorf("Expected %v, got %v", failure, err)
	}
	if !strings.Contains(err.Error(), "Fail") {
		t.Errorf("Expected the stage name in %q", err)
	}
	if out != nil || reached {
		t.Errorf("Expected no partial results, got %v (downstream reached: %v)", out, reached)
	}
}

func TestPanicBecomesError(t *testing.T) {
	p := From("numbers", []int{1}).Chain("Panic", func([]int, ProgressFunc) ([]int, error) {
		panic("geometry exception")
	})
	if _, err := p.Execute(); err == nil {
		t.Error("Expected an error")
	}
}

func TestProgressIsMonotonic(t *testing.T) {
	rec := &recorder{}
	p := Load("numbers", "Load", func(report ProgressFunc) ([]int, error) {
		report(0.5)
		report(0.2)
		report(-1)
		return []int{1}, nil
	}, WithObserver(rec)).
		Chain("Silent", func(items []int, _ ProgressFunc) ([]int, error) { return items, nil })

	if _, err := p.Execute(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for _, event := range rec.events {
		if strings.HasPrefix(event, "regressed:") {
			t.Errorf("Progress regressed: %s", event)
		}
	}
	if rec.last["numbers/Load"] != 1 || rec.last["numbers/Silent"] != 1 {
		t.Errorf("Expected every stage to reach 1, got %v", rec.last)
	}
}

func TestMerge(t *testing.T) {
	other := []int{4, 5}
	out, err := From("numbers", []int{1, 2, 3}).Merge(other).Execute()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(out) != 5 || out[3] != 4 {
		t.Errorf("Expected [1 2 3 4 5], got %v", out)
	}
	out[3] = 40
	if other[0] != 4 {
		t.Error("Expected Merge to copy its input")
	}
}
