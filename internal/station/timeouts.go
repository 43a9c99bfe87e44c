package station

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/danmuck/shuttlectl/internal/latch"
)

// Wait bounds one blocking step. The zero Wait is unbounded.
type Wait struct {
	Timeout time.Duration
	Bounded bool
}

func Unbounded() Wait {
	return Wait{}
}

func Within(d time.Duration) Wait {
	return Wait{Timeout: d, Bounded: true}
}

// Await blocks on l for at most w.
func (w Wait) Await(ctx context.Context, l *latch.Latch) bool {
	if !w.Bounded {
		return l.Wait(ctx)
	}
	return l.WaitTimeout(ctx, w.Timeout)
}

// Timeouts holds the per-wait upper bounds of the reneging variant. When
// Enabled is false every wait is unbounded.
type Timeouts struct {
	Enabled      bool
	StationOpen  time.Duration
	Seat         time.Duration
	SourceDoor   time.Duration
	BoardingOver time.Duration
}

// Draw picks a wait uniformly in [0, max) using the caller's own source.
func (t Timeouts) Draw(rng *rand.Rand, max time.Duration) Wait {
	if !t.Enabled {
		return Unbounded()
	}
	if max <= 0 {
		return Within(0)
	}
	return Within(time.Duration(rng.Float64() * float64(max)))
}
