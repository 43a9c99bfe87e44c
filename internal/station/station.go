package station

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

var (
	ErrInvalidConfig  = errors.New("station: invalid config")
	ErrAlreadyRunning = errors.New("station: already running")
)

// Config is fixed for the lifetime of a Station.
type Config struct {
	Passengers int
	Capacity   int
	// Seed feeds every passenger's timeout source; zero picks one from the
	// clock.
	Seed       uint64
	PhasePause time.Duration
	TravelTime time.Duration
	OpenDelay  time.Duration
	// MaxCycles stops the controller with ErrCycleLimit; zero is unbounded.
	MaxCycles int
	// ArrivalRate paces passenger spawns per second; zero spawns everyone at
	// once.
	ArrivalRate  float64
	ArrivalBurst int
	Timeouts     Timeouts
	Namer        func(id int) string
}

// Station defaults mirror the reneging demo: 11 passengers, 3 seats.
func DefaultConfig() Config {
	return Config{
		Passengers:   11,
		Capacity:     3,
		PhasePause:   time.Second,
		TravelTime:   3 * time.Second,
		OpenDelay:    time.Second,
		ArrivalBurst: 1,
		Timeouts: Timeouts{
			Enabled:      true,
			StationOpen:  8 * time.Second,
			Seat:         30 * time.Second,
			SourceDoor:   4 * time.Second,
			BoardingOver: 8 * time.Second,
		},
		Namer: DefaultName,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Passengers < 0:
		return fmt.Errorf("%w: passengers must be >= 0, got %d", ErrInvalidConfig, c.Passengers)
	case c.Capacity <= 0:
		return fmt.Errorf("%w: capacity must be > 0, got %d", ErrInvalidConfig, c.Capacity)
	case c.PhasePause <= 0:
		return fmt.Errorf("%w: phase pause must be > 0, got %v", ErrInvalidConfig, c.PhasePause)
	case c.TravelTime < 0:
		return fmt.Errorf("%w: travel time must be >= 0, got %v", ErrInvalidConfig, c.TravelTime)
	case c.OpenDelay < 0:
		return fmt.Errorf("%w: open delay must be >= 0, got %v", ErrInvalidConfig, c.OpenDelay)
	case c.MaxCycles < 0:
		return fmt.Errorf("%w: max cycles must be >= 0, got %d", ErrInvalidConfig, c.MaxCycles)
	case c.ArrivalRate < 0:
		return fmt.Errorf("%w: arrival rate must be >= 0, got %v", ErrInvalidConfig, c.ArrivalRate)
	case c.ArrivalRate > 0 && c.ArrivalBurst <= 0:
		return fmt.Errorf("%w: arrival burst must be > 0 when arrivals are paced", ErrInvalidConfig)
	}
	return nil
}

// Station wires the shared state, the controller and the passengers of one
// run.
type Station struct {
	cfg       Config
	counters  *Counters
	gate      *Gate
	signals   Signals
	roster    *roster
	ctrl      *Controller
	observers []Observer
	running   atomic.Bool
}

func New(cfg Config, observers ...Observer) (*Station, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Namer == nil {
		cfg.Namer = DefaultName
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	s := &Station{
		cfg:       cfg,
		counters:  NewCounters(cfg.Capacity),
		gate:      NewGate(cfg.Capacity),
		signals:   NewSignals(),
		roster:    newRoster(),
		observers: observers,
	}
	s.ctrl = newController(cfg, s.signals, s.counters, s.emit)
	return s, nil
}

func (s *Station) Config() Config {
	return s.cfg
}

func (s *Station) Signals() Signals {
	return s.signals
}

func (s *Station) Counters() *Counters {
	return s.counters
}

func (s *Station) Gate() *Gate {
	return s.gate
}

func (s *Station) Controller() *Controller {
	return s.ctrl
}

// Run spawns the passengers, drives the controller and returns once every
// goroutine has finished. A Station runs at most once.
func (s *Station) Run(ctx context.Context) (Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return Report{}, ErrAlreadyRunning
	}
	started := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.ctrl.Run(gctx)
	})
	g.Go(func() error {
		return s.spawn(gctx, g)
	})
	err := g.Wait()

	return s.report(time.Since(started)), err
}

func (s *Station) spawn(ctx context.Context, g *errgroup.Group) error {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if s.cfg.ArrivalRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(s.cfg.ArrivalRate), s.cfg.ArrivalBurst)
	}
	for id := 1; id <= s.cfg.Passengers; id++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		p := s.newPassenger(id)
		g.Go(func() error {
			p.run(ctx)
			return nil
		})
	}
	return nil
}

func (s *Station) emit(ev Event) {
	for _, o := range s.observers {
		o.Observe(ev)
	}
}

// Snapshot is a point-in-time view of a station. Fields are read one after
// another and are not mutually consistent while passengers are moving.
type Snapshot struct {
	Passengers int            `json:"passengers"`
	Capacity   int            `json:"capacity"`
	OnTrain    int            `json:"on_train"`
	Departed   int            `json:"departed"`
	Settled    int            `json:"settled"`
	SeatsHeld  int            `json:"seats_held"`
	Phase      Phase          `json:"phase"`
	Cycles     int            `json:"cycles"`
	Signals    SignalState    `json:"signals"`
	States     map[string]int `json:"states"`
	Reneged    map[Stage]int  `json:"reneged"`
}

func (s *Station) Snapshot() Snapshot {
	onTrain, departed, settled := s.counters.Values()
	states, reneged := s.roster.counts()
	named := make(map[string]int, len(states))
	for state, n := range states {
		if n != 0 {
			named[state.String()] = n
		}
	}
	return Snapshot{
		Passengers: s.cfg.Passengers,
		Capacity:   s.cfg.Capacity,
		OnTrain:    onTrain,
		Departed:   departed,
		Settled:    settled,
		SeatsHeld:  s.gate.Held(),
		Phase:      s.ctrl.Phase(),
		Cycles:     s.ctrl.Cycle(),
		Signals:    s.signals.State(),
		States:     named,
		Reneged:    reneged,
	}
}

// Report summarizes a finished run.
type Report struct {
	Passengers int
	Capacity   int
	Alighted   int
	Reneged    map[Stage]int
	Departed   int
	OnTrain    int
	SeatsHeld  int
	Cycles     int
	Elapsed    time.Duration
}

func (r Report) RenegedTotal() int {
	n := 0
	for _, v := range r.Reneged {
		n += v
	}
	return n
}

// Settled counts passengers that reached a terminal state.
func (r Report) Settled() int {
	return r.Alighted + r.RenegedTotal()
}

func (s *Station) report(elapsed time.Duration) Report {
	onTrain, departed, _ := s.counters.Values()
	states, reneged := s.roster.counts()
	return Report{
		Passengers: s.cfg.Passengers,
		Capacity:   s.cfg.Capacity,
		Alighted:   states[StateAlighted],
		Reneged:    reneged,
		Departed:   departed,
		OnTrain:    onTrain,
		SeatsHeld:  s.gate.Held(),
		Cycles:     s.ctrl.Cycle(),
		Elapsed:    elapsed,
	}
}
