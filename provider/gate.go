package provider

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Gate caps the number of simultaneous outbound provider calls. All embedding
// and completion requests must pass through a gate; unbounded concurrent calls
// to the external provider are a design violation.
type Gate struct {
	sem *semaphore.Weighted
}

// NewGate creates a gate with the given number of permits
func NewGate(permits int64) *Gate {
	if permits <= 0 {
		permits = 1
	}
	return &Gate{sem: semaphore.NewWeighted(permits)}
}

// Acquire blocks until a permit is available or the context is done
func (g *Gate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// TryAcquire acquires a permit without blocking
func (g *Gate) TryAcquire() bool {
	return g.sem.TryAcquire(1)
}

// Release returns a permit to the gate
func (g *Gate) Release() {
	g.sem.Release(1)
}
