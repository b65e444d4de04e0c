package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analysis outcomes
const (
	OutcomeSuccess   = "success"
	OutcomeError     = "error"
	OutcomeTimeout   = "timeout"
	OutcomeMalformed = "malformed"
)

// Metrics holds the Prometheus collectors for analysis calls and sessions.
//
// Metrics:
//   - nutriscan_analysis_requests_total{operation,provider,outcome}
//   - nutriscan_analysis_duration_seconds{operation,provider}
//   - nutriscan_state_transitions_total{state}
//   - nutriscan_active_sessions
type Metrics struct {
	AnalysisRequests *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec
	StateTransitions *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		AnalysisRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nutriscan_analysis_requests_total",
				Help: "Total number of requests sent to the AI service",
			},
			[]string{"operation", "provider", "outcome"},
		),
		AnalysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nutriscan_analysis_duration_seconds",
				Help:    "Duration of AI service requests in seconds",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 9), // 250ms to ~64s
			},
			[]string{"operation", "provider"},
		),
		StateTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nutriscan_state_transitions_total",
				Help: "Total number of controller state transitions by target state",
			},
			[]string{"state"},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "nutriscan_active_sessions",
				Help: "Current number of chat and websocket sessions",
			},
		),
	}
}

// ObserveAnalysis records one finished AI request.
func (m *Metrics) ObserveAnalysis(operation, provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.AnalysisRequests.WithLabelValues(operation, provider, outcome).Inc()
	m.AnalysisDuration.WithLabelValues(operation, provider).Observe(d.Seconds())
}

// ObserveTransition records a controller entering state.
func (m *Metrics) ObserveTransition(state string) {
	if m == nil {
		return
	}
	m.StateTransitions.WithLabelValues(state).Inc()
}

// SetActiveSessions updates the session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}
