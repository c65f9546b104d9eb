package worker

import (
	"sync"
	"sync/atomic"
)

// Tracker counts processed items and reports progress in a fixed number of
// discrete steps. Every step is reported exactly once and in order.
type Tracker struct {
	total     int64
	processed int64
	steps     int
	report    func(fraction float64)

	mu   sync.Mutex
	last int
}

// NewTracker creates a tracker for total items reporting at most steps times.
// A nil report function disables reporting.
func NewTracker(total, steps int, report func(fraction float64)) *Tracker {
	if steps <= 0 {
		steps = 1
	}
	return &Tracker{total: int64(total), steps: steps, report: report}
}

// Increment marks one more item as processed.
func (t *Tracker) Increment() {
	processed := atomic.AddInt64(&t.processed, 1)
	if t.total <= 0 {
		return
	}
	t.advance(int(processed * int64(t.steps) / t.total))
}

// Done reports completion.
func (t *Tracker) Done() {
	t.advance(t.steps)
}

func (t *Tracker) advance(step int) {
	step = min(step, t.steps)

	t.mu.Lock()
	defer t.mu.Unlock()
	for t.last < step {
		t.last++
		if t.report != nil {
			t.report(float64(t.last) / float64(t.steps))
		}
	}
}
