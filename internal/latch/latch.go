// Package latch provides a level-triggered broadcast signal.
//
// A Latch is either set or clear. Set releases every goroutine currently
// waiting and every goroutine that waits afterwards, until Clear re-arms it.
// Waiters that were parked when Set happened are released even if Clear
// follows immediately.
package latch

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Latch is a manual-reset boolean signal. The zero value is not usable; use New.
type Latch struct {
	name string

	mu    sync.Mutex
	set   bool
	ready chan struct{} // closed while set
}

func New(name string) *Latch {
	return &Latch{
		name:  name,
		ready: make(chan struct{}),
	}
}

func (l *Latch) Name() string {
	return l.name
}

// Set marks the latch and wakes all waiters. Setting a set latch is a no-op.
func (l *Latch) Set() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.set {
		return
	}
	l.set = true
	close(l.ready)
}

// Clear re-arms the latch. Clearing a clear latch is a no-op.
func (l *Latch) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.set {
		return
	}
	l.set = false
	l.ready = make(chan struct{})
}

func (l *Latch) IsSet() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set
}

// Done returns a channel that is closed once the latch is set. The channel
// belongs to the current arming; after Clear a new channel is handed out.
func (l *Latch) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ready
}

// Wait blocks until the latch is set or ctx is done. It reports whether the
// set state was observed.
func (l *Latch) Wait(ctx context.Context) bool {
	select {
	case <-l.Done():
		return true
	case <-ctx.Done():
		return false
	}
}

// WaitTimeout is Wait bounded by d. A non-positive d never observes the
// latch, even one that is already set.
func (l *Latch) WaitTimeout(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-l.Done():
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

func (l *Latch) String() string {
	state := "clear"
	if l.IsSet() {
		state = "set"
	}
	return fmt.Sprintf("Latch(%s=%s)", l.name, state)
}
