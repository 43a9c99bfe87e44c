package station

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/danmuck/shuttlectl/internal/testutil/testlog"
)

// terminalLedger asserts every passenger settles exactly once.
type terminalLedger struct {
	mu      sync.Mutex
	settled map[int]int
}

func (l *terminalLedger) Observe(ev Event) {
	if ev.Kind != EventAlighted && ev.Kind != EventReneged {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.settled == nil {
		l.settled = make(map[int]int)
	}
	l.settled[ev.Passenger]++
}

func (l *terminalLedger) check(t *testing.T, total int) {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.settled) != total {
		t.Fatalf("expected %d settled passengers, got %d", total, len(l.settled))
	}
	for id, n := range l.settled {
		if n != 1 {
			t.Fatalf("passenger %d settled %d times", id, n)
		}
	}
}

// sampleInvariants polls the shared state until stop is closed.
func sampleInvariants(t *testing.T, st *Station, stop <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		capacity := st.Config().Capacity
		for {
			select {
			case <-stop:
				return
			default:
			}
			onTrain, departed, _ := st.Counters().Values()
			if onTrain < 0 || onTrain > capacity {
				t.Errorf("onTrain out of bounds: %d", onTrain)
			}
			if departed > st.Config().Passengers {
				t.Errorf("departed overshoot: %d", departed)
			}
			if held := st.Gate().Held(); held < 0 || held > capacity {
				t.Errorf("seats held out of bounds: %d", held)
			}
			time.Sleep(100 * time.Microsecond)
		}
	}()
	return done
}

func runStation(t *testing.T, cfg Config, observers ...Observer) (*Station, Report, error) {
	t.Helper()
	st, err := New(cfg, observers...)
	if err != nil {
		t.Fatalf("new station: %v", err)
	}
	stop := make(chan struct{})
	sampled := sampleInvariants(t, st, stop)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	report, err := st.Run(ctx)
	close(stop)
	<-sampled
	return st, report, err
}

func assertDrained(t *testing.T, report Report) {
	t.Helper()
	if report.Departed != report.Passengers {
		t.Fatalf("departed=%d want %d", report.Departed, report.Passengers)
	}
	if report.Settled() != report.Passengers {
		t.Fatalf("settled=%d want %d", report.Settled(), report.Passengers)
	}
	if report.OnTrain != 0 || report.SeatsHeld != 0 {
		t.Fatalf("train not empty: onTrain=%d seats=%d", report.OnTrain, report.SeatsHeld)
	}
}

func TestStationBaselineFiveOverThreeSeats(t *testing.T) {
	testlog.Start(t)

	cfg := fastConfig(5, 3)
	rec := newRecorder(t, cfg.Capacity)
	ledger := &terminalLedger{}
	st, report, err := runStation(t, cfg, rec, ledger)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	assertDrained(t, report)
	ledger.check(t, 5)

	if report.Alighted != 5 || report.RenegedTotal() != 0 {
		t.Fatalf("expected every passenger to ride: %+v", report)
	}
	if report.Cycles != 2 {
		t.Fatalf("five passengers over three seats need exactly two cycles, got %d", report.Cycles)
	}

	perCycle := make(map[int]int)
	for _, ev := range rec.of(EventBoarded) {
		perCycle[ev.Cycle]++
	}
	want := map[int]int{0: 3, 1: 2}
	if !reflect.DeepEqual(perCycle, want) {
		t.Fatalf("expected boarded per cycle %v, got %v", want, perCycle)
	}
	if st.Snapshot().Phase != PhaseHalted {
		t.Fatalf("expected halted controller, got %q", st.Snapshot().Phase)
	}
}

func TestStationImmediateTimeoutsRenegeAtStation(t *testing.T) {
	testlog.Start(t)

	cfg := fastConfig(11, 3)
	cfg.Timeouts = Timeouts{Enabled: true}
	rec := newRecorder(t, cfg.Capacity)
	ledger := &terminalLedger{}
	_, report, err := runStation(t, cfg, rec, ledger)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	assertDrained(t, report)
	ledger.check(t, 11)

	if report.Reneged[StageStationClosed] != 11 {
		t.Fatalf("expected all passengers to renege at the station: %+v", report.Reneged)
	}
	if n := len(rec.of(EventBoarded)); n != 0 {
		t.Fatalf("expected nobody to board, got %d", n)
	}
}

func TestStationSinglePassengerRidesOneCycle(t *testing.T) {
	testlog.Start(t)

	cfg := fastConfig(1, 1)
	cfg.PhasePause = 10 * time.Millisecond
	cfg.Timeouts = longTimeouts()
	st, report, err := runStation(t, cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	assertDrained(t, report)
	if report.Alighted != 1 {
		t.Fatalf("expected the passenger to alight: %+v", report)
	}
	if report.Cycles != 1 {
		t.Fatalf("expected one cycle, got %d", report.Cycles)
	}
	if onTrain, _, _ := st.Counters().Values(); onTrain != 0 {
		t.Fatalf("expected onTrain back to 0, got %d", onTrain)
	}
}

func TestStationRandomTimeoutsAlwaysTerminate(t *testing.T) {
	testlog.Start(t)

	for seed := uint64(1); seed <= 5; seed++ {
		cfg := fastConfig(40, 3)
		cfg.Seed = seed
		cfg.PhasePause = time.Millisecond
		cfg.TravelTime = time.Millisecond
		cfg.Timeouts = Timeouts{
			Enabled:      true,
			StationOpen:  8 * time.Millisecond,
			Seat:         30 * time.Millisecond,
			SourceDoor:   4 * time.Millisecond,
			BoardingOver: 8 * time.Millisecond,
		}
		rec := newRecorder(t, cfg.Capacity)
		ledger := &terminalLedger{}
		_, report, err := runStation(t, cfg, rec, ledger)
		if err != nil {
			t.Fatalf("seed %d run: %v", seed, err)
		}
		assertDrained(t, report)
		ledger.check(t, cfg.Passengers)
		if report.Reneged[StageInterrupted] != 0 {
			t.Fatalf("seed %d: unexpected interrupted passengers", seed)
		}
	}
}

func TestStationControllerPhaseOrder(t *testing.T) {
	testlog.Start(t)

	cfg := fastConfig(1, 1)
	rec := newRecorder(t, cfg.Capacity)
	_, _, err := runStation(t, cfg, rec)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []Phase{
		PhaseStationOpen,
		PhaseSourceDoorsOpen,
		PhaseBoardingOver,
		PhaseSourceDoorsClosed,
		PhaseOutbound,
		PhaseDestDoorsOpen,
		PhaseBoardingReset,
		PhaseDestDoorsClosed,
		PhaseInbound,
	}
	phases := rec.of(EventPhase)
	if len(phases) < len(want)+1 {
		t.Fatalf("expected at least one full cycle, got %d phases", len(phases))
	}
	for i, p := range want {
		if phases[i].Phase != p {
			t.Fatalf("phase[%d]=%q want %q", i, phases[i].Phase, p)
		}
	}
	if last := phases[len(phases)-1].Phase; last != PhaseHalted {
		t.Fatalf("expected final phase halted, got %q", last)
	}
}

func TestStationWithoutPassengersHaltsImmediately(t *testing.T) {
	testlog.Start(t)

	_, report, err := runStation(t, fastConfig(0, 3))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Cycles != 0 || report.Departed != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestStationCycleLimitInterruptsWaiters(t *testing.T) {
	testlog.Start(t)

	cfg := fastConfig(5, 3)
	cfg.MaxCycles = 1
	ledger := &terminalLedger{}
	_, report, err := runStation(t, cfg, ledger)
	if !errors.Is(err, ErrCycleLimit) {
		t.Fatalf("expected ErrCycleLimit, got %v", err)
	}
	assertDrained(t, report)
	ledger.check(t, 5)
	if report.Reneged[StageInterrupted] == 0 {
		t.Fatalf("expected interrupted passengers: %+v", report.Reneged)
	}
}

func TestStationContextCancelSettlesEveryone(t *testing.T) {
	testlog.Start(t)

	cfg := fastConfig(6, 2)
	cfg.PhasePause = time.Hour
	st, err := New(cfg)
	if err != nil {
		t.Fatalf("new station: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	report, err := st.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	assertDrained(t, report)
	if report.Reneged[StageInterrupted] != 6 {
		t.Fatalf("expected every passenger interrupted: %+v", report.Reneged)
	}
}

func TestStationPacedArrivals(t *testing.T) {
	testlog.Start(t)

	cfg := fastConfig(5, 2)
	cfg.ArrivalRate = 500
	cfg.ArrivalBurst = 1
	_, report, err := runStation(t, cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	assertDrained(t, report)
	if report.Alighted != 5 {
		t.Fatalf("expected every passenger to ride: %+v", report)
	}
}

func TestStationRunsOnce(t *testing.T) {
	testlog.Start(t)

	st, err := New(fastConfig(0, 1))
	if err != nil {
		t.Fatalf("new station: %v", err)
	}
	if _, err := st.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := st.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	testlog.Start(t)

	cases := map[string]func(*Config){
		"negative passengers": func(c *Config) { c.Passengers = -1 },
		"zero capacity":       func(c *Config) { c.Capacity = 0 },
		"zero pause":          func(c *Config) { c.PhasePause = 0 },
		"negative travel":     func(c *Config) { c.TravelTime = -time.Second },
		"negative open delay": func(c *Config) { c.OpenDelay = -time.Second },
		"negative cycles":     func(c *Config) { c.MaxCycles = -1 },
		"negative rate":       func(c *Config) { c.ArrivalRate = -1 },
		"paced without burst": func(c *Config) { c.ArrivalRate = 1; c.ArrivalBurst = 0 },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
