package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveAnalysis(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveAnalysis("analyze_image", "gemini", OutcomeSuccess, 2*time.Second)
	m.ObserveAnalysis("analyze_image", "gemini", OutcomeSuccess, time.Second)
	m.ObserveAnalysis("analyze_text", "openai", OutcomeTimeout, time.Minute)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnalysisRequests.WithLabelValues("analyze_image", "gemini", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisRequests.WithLabelValues("analyze_text", "openai", OutcomeTimeout)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.AnalysisDuration))
}

func TestTransitionsAndSessions(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTransition("scanning")
	m.ObserveTransition("scanning")
	m.SetActiveSessions(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StateTransitions.WithLabelValues("scanning")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ActiveSessions))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAnalysis("analyze_text", "gemini", OutcomeError, time.Second)
		m.ObserveTransition("idle")
		m.SetActiveSessions(1)
	})
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
