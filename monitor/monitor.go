// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	OnlinePlayers prometheus.Gauge
	ActiveRounds  prometheus.Gauge
	RoundsPlayed  prometheus.Counter
	MovesAccepted prometheus.Counter
	MovesRejected prometheus.Counter
	TurnTimeouts  prometheus.Counter
	RoundDuration prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := newMetrics(namespace)

	prometheus.MustRegister(
		m.OnlinePlayers,
		m.ActiveRounds,
		m.RoundsPlayed,
		m.MovesAccepted,
		m.MovesRejected,
		m.TurnTimeouts,
		m.RoundDuration,
	)

	return m
}

func newMetrics(namespace string) *Metrics {
	return &Metrics{
		OnlinePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_players",
			Help:      "Number of connected players",
		}),
		ActiveRounds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rounds",
			Help:      "Number of rooms with a round in progress",
		}),
		RoundsPlayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_total",
			Help:      "Total number of rounds started",
		}),
		MovesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_total",
			Help:      "Total number of accepted moves",
		}),
		MovesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_moves_total",
			Help:      "Total number of rejected moves",
		}),
		TurnTimeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turn_timeouts_total",
			Help:      "Total number of turns lost to the clock",
		}),
		RoundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "round_duration_seconds",
			Help:      "Duration of finished rounds",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

type Monitor struct {
	metrics   *Metrics
	startTime time.Time
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())

	// 添加expvar指标
	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	go http.ListenAndServe(addr, nil)
}

func (m *Monitor) IncOnlinePlayers() {
	m.metrics.OnlinePlayers.Inc()
}

func (m *Monitor) DecOnlinePlayers() {
	m.metrics.OnlinePlayers.Dec()
}

func (m *Monitor) SetActiveRounds(count int) {
	m.metrics.ActiveRounds.Set(float64(count))
}

// --- room.Recorder ---

func (m *Monitor) RoundStarted() {
	m.metrics.RoundsPlayed.Inc()
}

// RoundEnded leaves the active-rounds gauge alone: the periodic
// SetActiveRounds sample is its only writer.
func (m *Monitor) RoundEnded(duration time.Duration) {
	m.metrics.RoundDuration.Observe(duration.Seconds())
}

func (m *Monitor) MoveAccepted() {
	m.metrics.MovesAccepted.Inc()
}

func (m *Monitor) MoveRejected() {
	m.metrics.MovesRejected.Inc()
}

func (m *Monitor) TurnTimeout() {
	m.metrics.TurnTimeouts.Inc()
}
