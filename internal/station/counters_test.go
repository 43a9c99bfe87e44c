package station

import (
	"sync"
	"testing"

	"github.com/danmuck/shuttlectl/internal/testutil/testlog"
)

func TestCountersRegisterBoardingCountsBoth(t *testing.T) {
	testlog.Start(t)

	c := NewCounters(3)
	onTrain, departed := c.RegisterBoarding()
	if onTrain != 1 || departed != 1 {
		t.Fatalf("unexpected counters onTrain=%d departed=%d", onTrain, departed)
	}
	if c.Drained(1) {
		t.Fatalf("expected station not drained while a passenger is aboard")
	}
	if got := c.LeaveTrain(); got != 0 {
		t.Fatalf("unexpected onTrain after leave: %d", got)
	}
	if !c.Drained(1) {
		t.Fatalf("expected drained after the only passenger left")
	}
}

func TestCountersDepartIsMonotonic(t *testing.T) {
	testlog.Start(t)

	c := NewCounters(2)
	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Depart()
			c.Settle()
		}()
	}
	wg.Wait()

	onTrain, departed, settled := c.Values()
	if onTrain != 0 || departed != workers || settled != workers {
		t.Fatalf("unexpected counters onTrain=%d departed=%d settled=%d", onTrain, departed, settled)
	}
}

func TestCountersLeaveTrainUnderflowPanics(t *testing.T) {
	testlog.Start(t)

	defer func() {
		if recover() == nil {
			t.Fatalf("expected underflow panic")
		}
	}()
	NewCounters(1).LeaveTrain()
}

func TestCountersConcurrentBoardingStaysWithinCapacity(t *testing.T) {
	testlog.Start(t)

	const capacity = 4
	c := NewCounters(capacity)
	g := NewGate(capacity)

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !g.Acquire(t.Context(), Unbounded()) {
				t.Errorf("unbounded acquire failed")
				return
			}
			onTrain, _ := c.RegisterBoarding()
			if onTrain > capacity {
				t.Errorf("onTrain %d exceeds capacity", onTrain)
			}
			c.LeaveTrain()
			g.Release()
		}()
	}
	wg.Wait()

	onTrain, departed, _ := c.Values()
	if onTrain != 0 || departed != 64 {
		t.Fatalf("unexpected counters onTrain=%d departed=%d", onTrain, departed)
	}
}
