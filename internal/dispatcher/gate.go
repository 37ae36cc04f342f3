package dispatcher

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// gate bounds the number of recognition requests in flight. One is built per
// Dispatch call and discarded with it.
type gate struct {
	sem *semaphore.Weighted
}

func newGate(slots int) *gate {
	if slots < 1 {
		slots = 1
	}
	return &gate{sem: semaphore.NewWeighted(int64(slots))}
}

// acquire blocks until a slot is free or ctx is done.
func (g *gate) acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

func (g *gate) release() {
	g.sem.Release(1)
}
