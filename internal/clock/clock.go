// Package clock provides helpers for time-related operations.
package clock

import (
	"context"
	"time"
)

// SleepWithContext waits for the duration or returns early if the context is canceled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Every calls fn once per interval until ctx is done. A non-positive interval
// returns immediately without calling fn.
func Every(ctx context.Context, interval time.Duration, fn func(elapsed time.Duration)) {
	if interval <= 0 {
		return
	}
	started := time.Now()
	for SleepWithContext(ctx, interval) == nil {
		fn(time.Since(started))
	}
}
