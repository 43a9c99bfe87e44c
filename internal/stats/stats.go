package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/danmuck/shuttlectl/internal/station"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var ErrUnknownBackend = errors.New("stats: unknown backend")

// Outcome is a passenger's terminal transition.
type Outcome struct {
	Passenger string
	Alighted  bool
	Stage     station.Stage
	At        time.Time
}

type Recorder interface {
	Record(ctx context.Context, o Outcome) error
}

// Options selects and configures a backend.
type Options struct {
	Backend   string
	RedisAddr string
	Prefix    string
	TTL       time.Duration
}

// Open builds the recorder named by opts.Backend. The returned close
// function is never nil.
func Open(opts Options) (Recorder, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", "memory":
		return NewMemoryRecorder(), noop, nil
	case "none":
		return nil, noop, nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		rec := NewRedisRecorder(rdb, WithPrefix(opts.Prefix), WithTTL(opts.TTL))
		return rec, rdb.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// DefaultQueue is the outcome buffer of an Observer.
const DefaultQueue = 1024

// Observer adapts a Recorder to station events. Terminal events are
// queued and recorded by one background goroutine, each call bounded by
// timeout, so Observe never waits on the backend. When the queue is full
// the outcome is dropped and counted. Close flushes the queue.
type Observer struct {
	rec     Recorder
	timeout time.Duration

	mu      sync.RWMutex
	closed  bool
	queue   chan Outcome
	done    chan struct{}
	dropped atomic.Int64
}

type ObserverOption func(*observerOptions)

type observerOptions struct {
	queue int
}

// WithQueue sets the outcome buffer size.
func WithQueue(n int) ObserverOption {
	return func(o *observerOptions) {
		if n > 0 {
			o.queue = n
		}
	}
}

func NewObserver(rec Recorder, timeout time.Duration, opts ...ObserverOption) *Observer {
	cfg := observerOptions{queue: DefaultQueue}
	for _, opt := range opts {
		opt(&cfg)
	}
	o := &Observer{
		rec:     rec,
		timeout: timeout,
		queue:   make(chan Outcome, cfg.queue),
		done:    make(chan struct{}),
	}
	if rec == nil {
		o.closed = true
		close(o.done)
		return o
	}
	go o.drain()
	return o
}

func (o *Observer) Observe(ev station.Event) {
	if o == nil || o.rec == nil {
		return
	}
	if ev.Kind != station.EventAlighted && ev.Kind != station.EventReneged {
		return
	}
	out := Outcome{
		Passenger: ev.Name,
		Alighted:  ev.Kind == station.EventAlighted,
		Stage:     ev.Stage,
		At:        ev.At,
	}

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		o.dropped.Add(1)
		return
	}
	select {
	case o.queue <- out:
	default:
		o.dropped.Add(1)
	}
}

// Dropped counts outcomes lost to a full queue or a closed observer.
func (o *Observer) Dropped() int64 {
	if o == nil {
		return 0
	}
	return o.dropped.Load()
}

// Close stops accepting outcomes and waits until the queue is recorded.
// It is safe to call more than once.
func (o *Observer) Close() {
	if o == nil {
		return
	}
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.queue)
	}
	o.mu.Unlock()
	<-o.done
	if n := o.dropped.Load(); n > 0 {
		log.Warn().Int64("dropped", n).Msg("stats outcomes dropped")
	}
}

func (o *Observer) drain() {
	defer close(o.done)
	for out := range o.queue {
		o.record(out)
	}
}

func (o *Observer) record(out Outcome) {
	ctx := context.Background()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	if err := o.rec.Record(ctx, out); err != nil {
		log.Warn().Err(err).Str("passenger", out.Passenger).Msg("stats record failed")
	}
}
