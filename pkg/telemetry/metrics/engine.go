package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics tracks the engine's compile, evaluation, and session
// activity.
//
// Metrics:
//   - canvass_compiles_total: survey compilations by outcome
//   - canvass_visible_set_duration_seconds: visible-set computation duration
//   - canvass_heartbeats_total: heartbeat merges by outcome
//   - canvass_submissions_total: submissions by outcome
//   - canvass_active_sessions: drafts currently held by the session store
//   - canvass_swept_sessions_total: drafts removed by expiry sweeping
type EngineMetrics struct {
	compilesTotal      *prometheus.CounterVec
	visibleSetDuration prometheus.Histogram
	heartbeatsTotal    *prometheus.CounterVec
	submissionsTotal   *prometheus.CounterVec
	activeSessions     prometheus.Gauge
	sweptTotal         prometheus.Counter
}

// NewEngineMetrics creates and registers engine metrics with the provided
// registry.
func NewEngineMetrics(namespace string, registry *prometheus.Registry) *EngineMetrics {
	em := &EngineMetrics{
		compilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compiles_total",
				Help:      "Total number of survey version compilations",
			},
			[]string{"outcome"},
		),

		visibleSetDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "visible_set_duration_seconds",
				Help:      "Duration of visible-set computations in seconds",
				// Visible-set walks should be fast (< 1ms).
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 12), // 1µs to 2ms
			},
		),

		heartbeatsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "heartbeats_total",
				Help:      "Total number of heartbeat merges",
			},
			[]string{"outcome"},
		),

		submissionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Total number of submission attempts",
			},
			[]string{"outcome"},
		),

		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Number of draft sessions currently held",
			},
		),

		sweptTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "swept_sessions_total",
				Help:      "Total number of draft sessions removed by expiry sweeping",
			},
		),
	}

	registry.MustRegister(
		em.compilesTotal,
		em.visibleSetDuration,
		em.heartbeatsTotal,
		em.submissionsTotal,
		em.activeSessions,
		em.sweptTotal,
	)

	return em
}

// RecordCompile records one survey compilation with outcome "ok" or
// "error".
func (em *EngineMetrics) RecordCompile(outcome string) {
	em.compilesTotal.WithLabelValues(outcome).Inc()
}

// RecordVisibleSet records the duration of one visible-set computation.
func (em *EngineMetrics) RecordVisibleSet(duration time.Duration) {
	em.visibleSetDuration.Observe(duration.Seconds())
}

// RecordHeartbeat records one heartbeat merge with outcome "accepted",
// "not_found", or "expired".
func (em *EngineMetrics) RecordHeartbeat(outcome string) {
	em.heartbeatsTotal.WithLabelValues(outcome).Inc()
}

// RecordSubmission records one submission attempt with outcome "accepted",
// "rejected", "not_found", or "expired".
func (em *EngineMetrics) RecordSubmission(outcome string) {
	em.submissionsTotal.WithLabelValues(outcome).Inc()
}

// SetActiveSessions sets the active session gauge.
func (em *EngineMetrics) SetActiveSessions(n int) {
	em.activeSessions.Set(float64(n))
}

// AddSwept records n drafts removed by a sweep.
func (em *EngineMetrics) AddSwept(n int) {
	em.sweptTotal.Add(float64(n))
}
