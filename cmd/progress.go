package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bsaid97/go-polygon-stitcher/pipeline"
	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/tj/go-spin"
)

// progressDisplay renders pipeline progress until stopped.
type progressDisplay interface {
	pipeline.Observer
	Stop()
}

// spinner prints a single status line that is redrawn on every progress
// event.
type spinner struct {
	mu      sync.Mutex
	out     io.Writer
	frames  *spin.Spinner
	stopped bool
	last    string
}

func newSpinner(out io.Writer) *spinner {
	frames := spin.New()
	frames.Set(spin.Box1)
	return &spinner{out: out, frames: frames}
}

func (s *spinner) Progress(dataName, stage string, fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	line := fmt.Sprintf("%s %-24s %-16s %3.0f%%", s.frames.Next(), dataName, stage, fraction*100)
	fmt.Fprintf(s.out, "\r%-*s", len(s.last), line)
	s.last = line
}

func (s *spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	if s.last != "" {
		fmt.Fprintln(s.out)
	}
}

// stageBoard shows one progress bar per data set and stage.
type stageBoard struct {
	mu       sync.Mutex
	pw       progress.Writer
	trackers map[string]*progress.Tracker
	once     sync.Once
}

func newStageBoard() *stageBoard {
	pw := progress.NewWriter()
	pw.SetAutoStop(false)
	pw.SetTrackerLength(25)
	pw.SetMessageLength(40)
	pw.SetSortBy(progress.SortByNone)
	pw.SetStyle(progress.StyleDefault)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(time.Millisecond * 100)
	pw.Style().Colors = progress.StyleColorsExample
	pw.Style().Options.PercentFormat = "%4.1f%%"
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Value = false

	go pw.Render()
	return &stageBoard{pw: pw, trackers: map[string]*progress.Tracker{}}
}

func (b *stageBoard) Progress(dataName, stage string, fraction float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := dataName + "/" + stage
	tracker, ok := b.trackers[key]
	if !ok {
		tracker = &progress.Tracker{
			Message: fmt.Sprintf("%s: %s", dataName, stage),
			Total:   100,
			Units:   progress.UnitsDefault,
		}
		b.trackers[key] = tracker
		b.pw.AppendTracker(tracker)
	}
	tracker.SetValue(int64(fraction * 100))
	if fraction >= 1 {
		tracker.MarkAsDone()
	}
}

func (b *stageBoard) Stop() {
	b.once.Do(func() {
		// Let the writer draw the final state before stopping it.
		time.Sleep(time.Millisecond * 150)
		b.pw.Stop()
	})
}
