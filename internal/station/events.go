package station

import "time"

type EventKind string

const (
	EventArrived  EventKind = "arrived"
	EventSeated   EventKind = "seated"
	EventBoarded  EventKind = "boarded"
	EventAlighted EventKind = "alighted"
	EventReneged  EventKind = "reneged"
	EventPhase    EventKind = "phase"
)

// Event is one lifecycle or controller transition. Counter fields are read
// right after the transition and may already be stale when observed.
type Event struct {
	Kind      EventKind
	Passenger int
	Name      string
	Stage     Stage
	Phase     Phase
	Cycle     int
	OnTrain   int
	Departed  int
	SeatsHeld int
	At        time.Time
}

// Observer receives every Event. Observe is called concurrently from
// passenger goroutines and must not block.
type Observer interface {
	Observe(Event)
}

type ObserverFunc func(Event)

func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}
