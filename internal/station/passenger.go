package station

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Passenger is one actor of the boarding protocol. Its fields are owned by
// the goroutine running it.
type Passenger struct {
	ID   int
	Name string

	st    *Station
	rng   *rand.Rand
	state State

	holdsSeat bool
	aboard    bool
	departed  bool
}

// DefaultName labels passengers by id.
func DefaultName(id int) string {
	return fmt.Sprintf("passenger-%02d", id)
}

func (s *Station) newPassenger(id int) *Passenger {
	s.roster.enter()
	return &Passenger{
		ID:    id,
		Name:  s.cfg.Namer(id),
		st:    s,
		rng:   rand.New(rand.NewPCG(s.cfg.Seed, uint64(id))),
		state: StateHome,
	}
}

func (p *Passenger) run(ctx context.Context) {
	st := p.st
	t := st.cfg.Timeouts

	if !t.Draw(p.rng, t.StationOpen).Await(ctx, st.signals.StationOpen) {
		p.renege(ctx, StageStationClosed)
		return
	}
	p.move(StateAtPlatform)
	p.emit(EventArrived, "")

	if !st.gate.Acquire(ctx, t.Draw(p.rng, t.Seat)) {
		p.renege(ctx, StageNoSeat)
		return
	}
	p.holdsSeat = true
	p.move(StateHoldingSeat)
	p.emit(EventSeated, "")

	if !t.Draw(p.rng, t.SourceDoor).Await(ctx, st.signals.SourceDoorOpen) {
		p.renege(ctx, StageDoorNotOpened)
		return
	}
	st.counters.RegisterBoarding()
	p.aboard = true
	p.departed = true
	p.move(StateBoarded)
	p.emit(EventBoarded, "")

	if !t.Draw(p.rng, t.BoardingOver).Await(ctx, st.signals.BoardingOver) {
		p.renege(ctx, StageBoardingAbandoned)
		return
	}
	p.move(StateOnTrain)

	// Alighting is never abandoned once the train has left.
	if !st.signals.DestDoorOpen.Wait(ctx) {
		p.renege(ctx, StageInterrupted)
		return
	}
	p.alight()
}

func (p *Passenger) alight() {
	st := p.st
	st.counters.LeaveTrain()
	p.aboard = false
	st.gate.Release()
	p.holdsSeat = false

	st.roster.move(p.state, StateAlighted)
	p.state = StateAlighted
	st.counters.Settle()
	p.emit(EventAlighted, "")
}

// renege gives back whatever the passenger still holds. The departure is
// attributed here only if boarding has not already counted it.
func (p *Passenger) renege(ctx context.Context, stage Stage) {
	if ctx.Err() != nil {
		stage = StageInterrupted
	}
	st := p.st
	if p.aboard {
		st.counters.LeaveTrain()
		p.aboard = false
	}
	if p.holdsSeat {
		st.gate.Release()
		p.holdsSeat = false
	}
	if !p.departed {
		st.counters.Depart()
		p.departed = true
	}

	st.roster.renege(p.state, stage)
	p.state = StateReneged
	st.counters.Settle()
	p.emit(EventReneged, stage)
}

func (p *Passenger) move(to State) {
	p.st.roster.move(p.state, to)
	p.state = to
}

func (p *Passenger) emit(kind EventKind, stage Stage) {
	onTrain, departed, _ := p.st.counters.Values()
	p.st.emit(Event{
		Kind:      kind,
		Passenger: p.ID,
		Name:      p.Name,
		Stage:     stage,
		Cycle:     p.st.ctrl.Cycle(),
		OnTrain:   onTrain,
		Departed:  departed,
		SeatsHeld: p.st.gate.Held(),
		At:        time.Now(),
	})
}
