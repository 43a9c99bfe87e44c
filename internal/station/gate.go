package station

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate is the seat semaphore. A permit is held from platform arrival until
// the passenger alights or reneges.
type Gate struct {
	sem      *semaphore.Weighted
	capacity int
	held     atomic.Int64
}

func NewGate(capacity int) *Gate {
	return &Gate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
	}
}

// Acquire reserves one seat within w. It reports false if the wait ran out
// or ctx was canceled; in that case no permit is held.
func (g *Gate) Acquire(ctx context.Context, w Wait) bool {
	if w.Bounded {
		if w.Timeout <= 0 {
			return false
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	g.held.Add(1)
	return true
}

// Release returns a seat. Releasing more than was acquired panics.
func (g *Gate) Release() {
	if g.held.Add(-1) < 0 {
		panic("station: seat released without acquire")
	}
	g.sem.Release(1)
}

func (g *Gate) Held() int {
	return int(g.held.Load())
}

func (g *Gate) Available() int {
	return g.capacity - g.Held()
}

func (g *Gate) Capacity() int {
	return g.capacity
}

func (g *Gate) String() string {
	return fmt.Sprintf("Gate(%d/%d)", g.Held(), g.capacity)
}
