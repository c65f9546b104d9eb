// Package pipeline implements lazy, named chains of collection transforms.
package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ProgressFunc receives the completed fraction of the running stage.
type ProgressFunc func(fraction float64)

// Observer is notified of stage progress. Implementations must not block.
type Observer interface {
	Progress(dataName, stage string, fraction float64)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(dataName, stage string, fraction float64)

func (f ObserverFunc) Progress(dataName, stage string, fraction float64) {
	f(dataName, stage, fraction)
}

// Stage transforms one materialized collection into another.
type Stage[T, U any] func(items []T, report ProgressFunc) ([]U, error)

type settings struct {
	logger   *zap.Logger
	observer Observer
}

type Option func(*settings)

func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(s *settings) {
		s.observer = observer
	}
}

// Processor is a deferred collection of T. Nothing runs until Execute, and
// every call to Execute runs the whole chain again.
type Processor[T any] struct {
	dataName string
	settings *settings
	run      func() ([]T, error)
}

// Load creates a root processor whose collection is produced by fn.
func Load[T any](dataName, stage string, fn func(report ProgressFunc) ([]T, error), opts ...Option) *Processor[T] {
	s := &settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	p := &Processor[T]{dataName: dataName, settings: s}
	p.run = func() ([]T, error) {
		return runStage(p.dataName, stage, s, func(report ProgressFunc) ([]T, error) {
			return fn(report)
		})
	}
	return p
}

// From creates a root processor over a copy of items.
func From[T any](dataName string, items []T, opts ...Option) *Processor[T] {
	return Load(dataName, "From", func(ProgressFunc) ([]T, error) {
		return append([]T(nil), items...), nil
	}, opts...)
}

// Chain returns a processor that applies fn to the output of p.
func (p *Processor[T]) Chain(stage string, fn Stage[T, T]) *Processor[T] {
	return Then(p, stage, fn)
}

// Merge returns a processor that appends a copy of other to the output of p.
func (p *Processor[T]) Merge(other []T) *Processor[T] {
	return p.Chain("Merge", func(items []T, _ ProgressFunc) ([]T, error) {
		merged := make([]T, 0, len(items)+len(other))
		merged = append(merged, items...)
		return append(merged, other...), nil
	})
}

// Then returns a processor that applies fn to the output of p and may change
// the element type.
func Then[T, U any](p *Processor[T], stage string, fn Stage[T, U]) *Processor[U] {
	next := &Processor[U]{
		dataName: p.dataName,
		settings: p.settings,
	}
	next.run = func() ([]U, error) {
		items, err := p.run()
		if err != nil {
			return nil, err
		}
		return runStage(p.dataName, stage, p.settings, func(report ProgressFunc) ([]U, error) {
			return fn(items, report)
		})
	}
	return next
}

// Execute materializes the chain. It is all-or-nothing: on any stage error
// no items are returned.
func (p *Processor[T]) Execute() ([]T, error) {
	return p.run()
}

func runStage[U any](dataName, stage string, s *settings, fn func(ProgressFunc) ([]U, error)) (out []U, err error) {
	start := time.Now()
	var last float64
	reported := false
	report := func(fraction float64) {
		fraction = max(0, min(1, fraction))
		if reported && fraction <= last {
			return
		}
		last, reported = fraction, true
		if s.observer != nil {
			s.observer.Progress(dataName, stage, fraction)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%s: %s: panic: %v", dataName, stage, r)
		}
	}()

	out, err = fn(report)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", dataName, stage, err)
	}
	report(1)

	s.logger.Debug("Stage finished",
		zap.String("data", dataName),
		zap.String("stage", stage),
		zap.Int("count", len(out)),
		zap.Duration("elapsed", time.Since(start)))
	return out, nil
}
