package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()

	m.ObserveAnalysis(OutcomeOK, 120*time.Millisecond)
	m.ObserveAnalysis(OutcomeEmpty, 0)
	m.ObserveNarrative("fallback")
	m.ObserveRecords(42)
	m.ObserveHTTPRequest(http.MethodPost, "/api/analyze-feedback", "200")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisRequests.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysisRequests.WithLabelValues(OutcomeEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NarrativeTotal.WithLabelValues("fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues(http.MethodPost, "/api/analyze-feedback", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.AnalysisDuration))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveAnalysis(OutcomeError, time.Second)
		m.ObserveNarrative("external")
		m.ObserveRecords(1)
		m.ObserveHTTPRequest(http.MethodGet, "/", "200")
	})
	assert.Nil(t, m.Registry())
	assert.NotNil(t, m.Handler())
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveNarrative("external")

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `feedback_narrative_total{source="external"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
