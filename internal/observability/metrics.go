package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/danmuck/shuttlectl/internal/station"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Source is the live state the counter gauges read at scrape time.
// *station.Station satisfies it.
type Source interface {
	Counters() *station.Counters
	Gate() *station.Gate
	Controller() *station.Controller
}

// StationMetrics exports a station on its own registry so several
// stations (and tests) never collide on registration. Counter gauges read
// the bound Source when scraped and report zero until Bind is called.
type StationMetrics struct {
	registry *prometheus.Registry

	mu  sync.RWMutex
	src Source

	onTrain   prometheus.GaugeFunc
	departed  prometheus.GaugeFunc
	seatsHeld prometheus.GaugeFunc
	cycles    prometheus.GaugeFunc
	phase     *prometheus.GaugeVec
	lifecycle *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func NewStationMetrics(node string) *StationMetrics {
	labels := prometheus.Labels{"node": node}
	m := &StationMetrics{registry: prometheus.NewRegistry()}
	m.onTrain = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "shuttle",
		Subsystem:   "train",
		Name:        "passengers_on_train",
		Help:        "Passengers currently counted aboard.",
		ConstLabels: labels,
	}, m.read(func(s Source) int {
		onTrain, _, _ := s.Counters().Values()
		return onTrain
	}))
	m.departed = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "shuttle",
		Subsystem:   "station",
		Name:        "passengers_departed",
		Help:        "Passengers that have left the source platform.",
		ConstLabels: labels,
	}, m.read(func(s Source) int {
		_, departed, _ := s.Counters().Values()
		return departed
	}))
	m.seatsHeld = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "shuttle",
		Subsystem:   "train",
		Name:        "seats_held",
		Help:        "Seat permits currently held.",
		ConstLabels: labels,
	}, m.read(func(s Source) int {
		return s.Gate().Held()
	}))
	m.cycles = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   "shuttle",
		Subsystem:   "controller",
		Name:        "cycles_completed",
		Help:        "Completed shuttle cycles.",
		ConstLabels: labels,
	}, m.read(func(s Source) int {
		return s.Controller().Cycle()
	}))
	m.assignVectors(labels)
	m.registry.MustRegister(
		m.onTrain,
		m.departed,
		m.seatsHeld,
		m.cycles,
		m.phase,
		m.lifecycle,
		m.httpRequests,
		m.httpDuration,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *StationMetrics) assignVectors(labels prometheus.Labels) {
	m.phase = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   "shuttle",
		Subsystem:   "controller",
		Name:        "phase",
		Help:        "1 for the controller's current phase.",
		ConstLabels: labels,
	}, []string{"phase"})
	m.lifecycle = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   "shuttle",
		Subsystem:   "passenger",
		Name:        "events_total",
		Help:        "Passenger lifecycle transitions.",
		ConstLabels: labels,
	}, []string{"event", "stage"})
	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   "shuttle",
		Subsystem:   "http",
		Name:        "requests_total",
		Help:        "Total admin HTTP requests.",
		ConstLabels: labels,
	}, []string{"method", "path", "status"})
	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   "shuttle",
		Subsystem:   "http",
		Name:        "request_duration_seconds",
		Help:        "Admin HTTP request duration in seconds.",
		Buckets:     prometheus.DefBuckets,
		ConstLabels: labels,
	}, []string{"method", "path", "status"})
}

// Bind points the counter gauges at a live station.
func (m *StationMetrics) Bind(src Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.src = src
}

func (m *StationMetrics) read(get func(Source) int) func() float64 {
	return func() float64 {
		m.mu.RLock()
		src := m.src
		m.mu.RUnlock()
		if src == nil {
			return 0
		}
		return float64(get(src))
	}
}

func (m *StationMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe implements station.Observer. Only the phase and the lifecycle
// counters come from events; counter gauges are read at scrape time.
func (m *StationMetrics) Observe(ev station.Event) {
	if ev.Kind == station.EventPhase {
		m.phase.Reset()
		m.phase.WithLabelValues(string(ev.Phase)).Set(1)
		return
	}
	m.lifecycle.WithLabelValues(string(ev.Kind), string(ev.Stage)).Inc()
}

func (m *StationMetrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusLabel := strconv.Itoa(status)
	m.httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	m.httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}
