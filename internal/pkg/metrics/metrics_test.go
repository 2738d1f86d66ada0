package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()

	m.ObserveClassification("service", true)
	m.ObserveClassification("service", true)
	m.ObserveClassification("fallback", false)
	m.ObserveGeocoder("error")
	m.ObserveRun("completed", 2*time.Second, 10, 4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.classifications.WithLabelValues("service", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.classifications.WithLabelValues("fallback", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.geocoderCalls.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("completed")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.overlapping))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.records))
}

func TestMetrics_FailedRunKeepsLastGauges(t *testing.T) {
	m := New()
	m.ObserveRun("completed", time.Second, 5, 2)
	m.ObserveRun("error", time.Second, 0, 0)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.records))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("error")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveClassification("service", true)
		m.ObserveGeocoder("ok")
		m.ObserveRun("completed", time.Second, 1, 0)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveGeocoder("ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `fse_geocoder_requests_total{outcome="ok"} 1`))
}
