package station

import (
	"context"
	"sync"
	"testing"
	"time"
)

const eventWait = 2 * time.Second

// recorder collects events and checks the capacity bound on each one.
type recorder struct {
	t        *testing.T
	capacity int
	ch       chan Event

	mu     sync.Mutex
	events []Event
}

func newRecorder(t *testing.T, capacity int) *recorder {
	return &recorder{t: t, capacity: capacity, ch: make(chan Event, 1024)}
}

func (r *recorder) Observe(ev Event) {
	if ev.OnTrain > r.capacity {
		r.t.Errorf("onTrain %d exceeds capacity %d at %s", ev.OnTrain, r.capacity, ev.Kind)
	}
	if ev.SeatsHeld > r.capacity {
		r.t.Errorf("seats held %d exceed capacity %d at %s", ev.SeatsHeld, r.capacity, ev.Kind)
	}
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	select {
	case r.ch <- ev:
	default:
	}
}

func (r *recorder) all() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recorder) of(kind EventKind) []Event {
	var out []Event
	for _, ev := range r.all() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// waitFor blocks until an event of kind arrives on the channel.
func (r *recorder) waitFor(kind EventKind) Event {
	r.t.Helper()
	deadline := time.After(eventWait)
	for {
		select {
		case ev := <-r.ch:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			r.t.Fatalf("timed out waiting for %s event", kind)
		}
	}
}

// manualStation builds a station whose controller is never started so the
// test drives the latches itself.
func manualStation(t *testing.T, capacity int, timeouts Timeouts) (*Station, *recorder) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Passengers = 1
	cfg.Capacity = capacity
	cfg.Seed = 42
	cfg.Timeouts = timeouts
	rec := newRecorder(t, capacity)
	st, err := New(cfg, rec)
	if err != nil {
		t.Fatalf("new station: %v", err)
	}
	return st, rec
}

// launch runs a fresh passenger and returns a channel closed when it settles.
func launch(ctx context.Context, st *Station, id int) <-chan struct{} {
	p := st.newPassenger(id)
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.run(ctx)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(eventWait):
		t.Fatalf("passenger did not settle")
	}
}

func fastConfig(passengers, capacity int) Config {
	cfg := DefaultConfig()
	cfg.Passengers = passengers
	cfg.Capacity = capacity
	cfg.Seed = 7
	cfg.PhasePause = 2 * time.Millisecond
	cfg.TravelTime = 2 * time.Millisecond
	cfg.OpenDelay = 2 * time.Millisecond
	cfg.Timeouts = Timeouts{}
	return cfg
}

func longTimeouts() Timeouts {
	return Timeouts{
		Enabled:      true,
		StationOpen:  time.Hour,
		Seat:         time.Hour,
		SourceDoor:   time.Hour,
		BoardingOver: time.Hour,
	}
}
