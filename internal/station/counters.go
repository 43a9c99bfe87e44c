package station

import "sync"

// Counters holds the shared onTrain/departed tallies. The admission
// condition shares the counter mutex so a boarding increment and its
// predicate check happen under one lock.
type Counters struct {
	mu       sync.Mutex
	admitted *sync.Cond
	capacity int

	onTrain  int
	departed int
	settled  int
}

func NewCounters(capacity int) *Counters {
	c := &Counters{capacity: capacity}
	c.admitted = sync.NewCond(&c.mu)
	return c
}

// Depart attributes a departure to a passenger that never boarded.
func (c *Counters) Depart() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.departed++
	return c.departed
}

// LeaveTrain undoes a boarding increment and wakes admission waiters.
func (c *Counters) LeaveTrain() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.onTrain == 0 {
		panic("station: onTrain underflow")
	}
	c.onTrain--
	c.admitted.Broadcast()
	return c.onTrain
}

// Settle records that one more passenger reached a terminal state.
func (c *Counters) Settle() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settled++
	return c.settled
}

func (c *Counters) Values() (onTrain, departed, settled int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onTrain, c.departed, c.settled
}

// Drained reports whether every passenger has departed and the train is
// empty.
func (c *Counters) Drained(total int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.departed == total && c.onTrain == 0
}
