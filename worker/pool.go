package worker

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool runs data-parallel work over slices on a fixed number of workers.
type Pool struct {
	NumWorkers int
}

// NewPool creates a pool with numWorkers workers, or one per CPU when
// numWorkers is not positive.
func NewPool(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &Pool{NumWorkers: numWorkers}
}

func (p *Pool) workers(jobs int) int {
	n := runtime.NumCPU()
	if p != nil && p.NumWorkers > 0 {
		n = p.NumWorkers
	}
	return min(n, jobs)
}

// Collect calls fn for every item and concatenates the outputs. Each worker
// appends to its own buffer and the buffers are joined once every worker is
// done, so the output order is unspecified. The first error aborts the
// remaining work and nothing is returned.
func Collect[T, R any](p *Pool, items []T, fn func(item T) ([]R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	jobs := make(chan T, len(items))
	for _, item := range items {
		jobs <- item
	}
	close(jobs)

	numWorkers := p.workers(len(items))
	buffers := make([][]R, numWorkers)

	var g errgroup.Group
	for id := range numWorkers {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					drain(jobs)
					err = fmt.Errorf("worker panic: %v", r)
				}
			}()
			for item := range jobs {
				out, err := fn(item)
				if err != nil {
					drain(jobs)
					return err
				}
				buffers[id] = append(buffers[id], out...)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, buf := range buffers {
		total += len(buf)
	}
	results := make([]R, 0, total)
	for _, buf := range buffers {
		results = append(results, buf...)
	}
	return results, nil
}

type indexed[T any] struct {
	index int
	item  T
}

// Map calls fn for every item and returns the results in input order.
func Map[T, R any](p *Pool, items []T, fn func(item T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	jobs := make([]indexed[T], len(items))
	for i, item := range items {
		jobs[i] = indexed[T]{index: i, item: item}
	}

	results := make([]R, len(items))
	_, err := Collect(p, jobs, func(job indexed[T]) ([]struct{}, error) {
		out, err := fn(job.item)
		if err != nil {
			return nil, err
		}
		results[job.index] = out
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// drain empties the job queue so that the other workers stop early.
func drain[T any](jobs <-chan T) {
	for range jobs {
	}
}
