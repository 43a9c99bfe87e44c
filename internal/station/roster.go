package station

import "sync"

// roster keeps the per-state passenger histogram.
type roster struct {
	mu      sync.Mutex
	states  map[State]int
	reneged map[Stage]int
}

func newRoster() *roster {
	return &roster{
		states:  make(map[State]int),
		reneged: make(map[Stage]int),
	}
}

func (r *roster) enter() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[StateHome]++
}

func (r *roster) move(from, to State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[from]--
	r.states[to]++
}

func (r *roster) renege(from State, stage Stage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[from]--
	r.states[StateReneged]++
	r.reneged[stage]++
}

func (r *roster) counts() (map[State]int, map[Stage]int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	states := make(map[State]int, len(r.states))
	for k, v := range r.states {
		states[k] = v
	}
	reneged := make(map[Stage]int, len(r.reneged))
	for k, v := range r.reneged {
		reneged[k] = v
	}
	return states, reneged
}
