// Package workerpool provides simple concurrent processing utilities.
package workerpool

import (
	"context"
	"errors"
	"sync"
)

// ErrNoWorkers is returned when a pool is asked to run with fewer than one worker.
var ErrNoWorkers = errors.New("worker count must be positive")

// Map runs a worker pool over the provided items, invoking process for each and
// storing its result at the item's index.
// If process returns an error, the pool cancels the context and stops further work.
func Map[T, R any](
	ctx context.Context,
	workerCount int,
	items []T,
	process func(context.Context, T) (R, error),
) ([]R, error) {
	if workerCount < 1 {
		return nil, ErrNoWorkers
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type task struct {
		index int
		item  T
	}

	results := make([]R, len(items))
	tasks := make(chan task, workerCount)
	errs := make(chan error, workerCount)
	wg := sync.WaitGroup{}
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-tasks:
					if !ok {
						return
					}
					result, err := process(ctx, t.item)
					if err != nil {
						select {
						case errs <- err:
						default:
						}
						cancel()
						return
					}
					results[t.index] = result
				}
			}
		}()
	}

	go func() {
		defer close(tasks)
		for i, item := range items {
			select {
			case <-ctx.Done():
				return
			case tasks <- task{index: i, item: item}:
			}
		}
	}()

	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// Race starts workerCount workers and returns the result of the first one to
// succeed. The winner cancels the shared context so the others stop at their
// next check; Race waits for every worker to return before it does.
// When no worker succeeds the joined worker errors are returned.
func Race[T any](
	ctx context.Context,
	workerCount int,
	work func(ctx context.Context, worker int) (T, error),
) (T, error) {
	var zero T
	if workerCount < 1 {
		return zero, ErrNoWorkers
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		worker int
		value  T
		err    error
	}

	outcomes := make(chan outcome, workerCount)
	wg := sync.WaitGroup{}
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			value, err := work(ctx, worker)
			outcomes <- outcome{worker: worker, value: value, err: err}
		}(i)
	}

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	errs := make([]error, workerCount)
	won := false
	var winner T
	for o := range outcomes {
		if o.err != nil {
			errs[o.worker] = o.err
			continue
		}
		if !won {
			won = true
			winner = o.value
			cancel()
		}
	}

	if won {
		return winner, nil
	}
	return zero, errors.Join(errs...)
}
