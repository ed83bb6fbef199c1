package repository

import (
	"context"
	"fmt"
	"time"
)

// Latency holds the simulated round trip of each kind of backend call.
type Latency struct {
	Seats   time.Duration // seat map lookups
	Load    time.Duration // reads and authentication
	Process time.Duration // purchase creation
}

// NoLatency answers immediately; tests use it.
func NoLatency() Latency { return Latency{} }

// wait blocks for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
	}
}
