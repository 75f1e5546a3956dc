package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_InstrumentDone(t *testing.T) {
	m := NewMetrics()
	m.InstrumentDone("", 3)
	m.InstrumentDone("", 3)
	m.InstrumentDone("insufficient_data", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.InstrumentsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InstrumentsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues("insufficient_data")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.PredictedTotal))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveExtract(time.Millisecond)
		m.InstrumentDone("io", 0)
		m.RunDone(time.Second, time.Now())
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m.RunDone(2*time.Second, at)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stockwindow_run_duration_seconds_count 1")
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(m.LastRunTimestamp))
}
