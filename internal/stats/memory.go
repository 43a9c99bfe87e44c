package stats

import (
	"context"
	"sync"

	"github.com/danmuck/shuttlectl/internal/station"
)

type Counters struct {
	Alighted int64
	Reneged  int64
}

// MemoryRecorder keeps outcomes in process. It never expires anything.
type MemoryRecorder struct {
	mu      sync.Mutex
	total   Counters
	byStage map[station.Stage]int64
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{byStage: make(map[station.Stage]int64)}
}

func (r *MemoryRecorder) Record(_ context.Context, o Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.Alighted {
		r.total.Alighted++
		return nil
	}
	r.total.Reneged++
	r.byStage[o.Stage]++
	return nil
}

func (r *MemoryRecorder) Total() Counters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.total
}

func (r *MemoryRecorder) ByStage() map[station.Stage]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[station.Stage]int64, len(r.byStage))
	for k, v := range r.byStage {
		out[k] = v
	}
	return out
}
