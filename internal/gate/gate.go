// Package gate bounds the number of requests concurrently occupying the
// request pipeline. It is a counting semaphore with a bounded wait: a
// request either takes a slot within the configured window or is turned
// away with ErrTimeout so the caller can answer 503.
package gate

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTimeout reports that no slot freed up within the wait window. It is an
// expected overload outcome, not an internal failure.
var ErrTimeout = errors.New("admission wait timed out")

// Gate admits at most Capacity requests at a time. Acquire and Release are
// safe for concurrent use from many request goroutines.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int64
	wait     time.Duration
	inUse    atomic.Int64
}

// New builds a gate with the given capacity and wait window. Capacity and
// wait are fixed for the process lifetime.
func New(capacity int64, wait time.Duration) (*Gate, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("gate capacity must be positive, got %d", capacity)
	}
	if wait <= 0 {
		return nil, fmt.Errorf("gate wait must be positive, got %v", wait)
	}
	return &Gate{
		sem:      semaphore.NewWeighted(capacity),
		capacity: capacity,
		wait:     wait,
	}, nil
}

// Acquire takes one slot, waiting up to the gate's window for one to free.
// Returns ErrTimeout when the window elapses. The gate's own deadline is
// deliberately independent of the caller's context so a hung client cannot
// shorten or extend the admission contract; ctx is still honored for
// cancellation.
func (g *Gate) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, g.wait)
	defer cancel()

	if err := g.sem.Acquire(waitCtx, 1); err != nil {
		if errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return err
	}
	g.inUse.Add(1)
	return nil
}

// Release returns a slot to the pool. Must be called exactly once per
// successful Acquire.
func (g *Gate) Release() {
	g.inUse.Add(-1)
	g.sem.Release(1)
}

// InUse reports the number of slots currently held.
func (g *Gate) InUse() int64 { return g.inUse.Load() }

// Capacity reports the fixed slot count.
func (g *Gate) Capacity() int64 { return g.capacity }

// Wait reports the fixed admission wait window.
func (g *Gate) Wait() time.Duration { return g.wait }
