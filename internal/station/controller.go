package station

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var ErrCycleLimit = errors.New("station: cycle limit reached")

// Phase is the controller's position in the shuttle cycle.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseStationOpen       Phase = "station_open"
	PhaseSourceDoorsOpen   Phase = "source_doors_open"
	PhaseBoardingOver      Phase = "boarding_over"
	PhaseSourceDoorsClosed Phase = "source_doors_closed"
	PhaseOutbound          Phase = "outbound"
	PhaseDestDoorsOpen     Phase = "dest_doors_open"
	PhaseBoardingReset     Phase = "boarding_reset"
	PhaseDestDoorsClosed   Phase = "dest_doors_closed"
	PhaseInbound           Phase = "inbound"
	PhaseHalted            Phase = "halted"
)

// Controller drives the phase latches through the shuttle cycle. It never
// waits on individual passengers.
type Controller struct {
	signals   Signals
	counters  *Counters
	total     int
	pause     time.Duration
	travel    time.Duration
	openDelay time.Duration
	maxCycles int
	emit      func(Event)

	mu     sync.RWMutex
	phase  Phase
	cycles atomic.Int64
}

type step struct {
	phase Phase
	apply func()
	hold  time.Duration
}

func newController(cfg Config, signals Signals, counters *Counters, emit func(Event)) *Controller {
	return &Controller{
		signals:   signals,
		counters:  counters,
		total:     cfg.Passengers,
		pause:     cfg.PhasePause,
		travel:    cfg.TravelTime,
		openDelay: cfg.OpenDelay,
		maxCycles: cfg.MaxCycles,
		emit:      emit,
		phase:     PhaseIdle,
	}
}

// Run opens the station and repeats the cycle until every passenger has
// departed and the train is empty.
func (c *Controller) Run(ctx context.Context) error {
	if err := sleep(ctx, c.openDelay); err != nil {
		return err
	}
	c.signals.StationOpen.Set()
	c.enter(PhaseStationOpen)

	steps := c.cycle()
	for {
		if c.counters.Drained(c.total) {
			c.enter(PhaseHalted)
			return nil
		}
		if c.maxCycles > 0 && c.Cycle() >= c.maxCycles {
			return fmt.Errorf("%w: %d cycles", ErrCycleLimit, c.maxCycles)
		}
		for _, st := range steps {
			if st.apply != nil {
				st.apply()
			}
			c.enter(st.phase)
			if err := sleep(ctx, st.hold); err != nil {
				return err
			}
		}
		c.cycles.Add(1)
	}
}

func (c *Controller) cycle() []step {
	s := c.signals
	return []step{
		{phase: PhaseSourceDoorsOpen, apply: s.SourceDoorOpen.Set, hold: c.pause},
		{phase: PhaseBoardingOver, apply: s.BoardingOver.Set, hold: c.pause},
		{phase: PhaseSourceDoorsClosed, apply: s.SourceDoorOpen.Clear, hold: c.pause},
		{phase: PhaseOutbound, hold: c.travel},
		{phase: PhaseDestDoorsOpen, apply: s.DestDoorOpen.Set, hold: c.pause},
		{phase: PhaseBoardingReset, apply: s.BoardingOver.Clear, hold: c.pause},
		{phase: PhaseDestDoorsClosed, apply: s.DestDoorOpen.Clear, hold: c.pause},
		{phase: PhaseInbound, hold: c.travel},
	}
}

func (c *Controller) enter(phase Phase) {
	c.mu.Lock()
	c.phase = phase
	c.mu.Unlock()

	onTrain, departed, _ := c.counters.Values()
	c.emit(Event{
		Kind:     EventPhase,
		Phase:    phase,
		Cycle:    c.Cycle(),
		OnTrain:  onTrain,
		Departed: departed,
		At:       time.Now(),
	})
}

func (c *Controller) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// Cycle returns the number of completed cycles.
func (c *Controller) Cycle() int {
	return int(c.cycles.Load())
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
