package ai

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// DefaultGovernorCapacity bounds in-flight language-model calls
// process-wide. The inference backend is resource constrained; batch
// fan-out must not overwhelm it.
const DefaultGovernorCapacity = 5

// Governor is a counting semaphore gating every language-model call in the
// process. It is constructed eagerly at startup and passed down explicitly;
// there is no lazy first-use initialization.
type Governor struct {
	sem      *semaphore.Weighted
	capacity int64
}

// NewGovernor creates a Governor with the given capacity. Non-positive
// capacities fall back to DefaultGovernorCapacity.
func NewGovernor(capacity int64) *Governor {
	if capacity <= 0 {
		capacity = DefaultGovernorCapacity
	}
	return &Governor{
		sem:      semaphore.NewWeighted(capacity),
		capacity: capacity,
	}
}

// Capacity returns the configured slot count.
func (g *Governor) Capacity() int64 {
	return g.capacity
}

// Acquire blocks until a slot is free or ctx is done.
func (g *Governor) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// Release frees a previously acquired slot.
func (g *Governor) Release() {
	g.sem.Release(1)
}

// Do runs fn while holding a slot. The slot is released regardless of
// fn's outcome.
func (g *Governor) Do(ctx context.Context, fn func(context.Context) error) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer g.sem.Release(1)
	return fn(ctx)
}
