// Package gate bounds the number of simultaneously outstanding operations
// against a shared upstream, queuing excess callers until a slot frees.
package gate

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrent is the slot count used by New when given a
// non-positive limit. Three concurrent requests keeps the upstream API
// comfortably under its rate limits while still overlapping I/O.
const DefaultMaxConcurrent = 3

// Gate is a bounded-admission gate. At most maxConcurrent operations run at
// once; additional callers block in Run until a slot frees. Waiters are
// released in arrival order, a property the underlying weighted semaphore
// guarantees.
//
// A Gate is an injectable component: construct one per upstream and share
// it between every caller that talks to that upstream.
type Gate struct {
	sem *semaphore.Weighted
	max int64
}

// New creates a Gate admitting up to maxConcurrent concurrent operations.
func New(maxConcurrent int64) *Gate {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Gate{
		sem: semaphore.NewWeighted(maxConcurrent),
		max: maxConcurrent,
	}
}

// MaxConcurrent reports the gate's slot count.
func (g *Gate) MaxConcurrent() int64 {
	return g.max
}

// Run executes op once a slot is available, releasing the slot when op
// returns. op's error is returned to this caller only; it does not affect
// other queued or running operations. Run returns the context's error if
// ctx is cancelled while waiting for a slot.
func (g *Gate) Run(ctx context.Context, op func(ctx context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for gate slot: %w", err)
	}
	defer g.sem.Release(1)
	return op(ctx)
}
