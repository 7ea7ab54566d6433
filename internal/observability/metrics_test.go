package observability

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.RecordRequest("/api/drivers/register", "POST", 201, 10*time.Millisecond)
	m.RecordRequest("/api/drivers/register", "POST", 201, 12*time.Millisecond)
	m.RecordError("/api/drivers/register", "POST", "DUPLICATE_EMAIL")
	m.RecordRegistration("registered")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("/api/drivers/register", "POST", "201")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues("/api/drivers/register", "POST", "DUPLICATE_EMAIL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues("registered")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordRegistration("registered")
	})
}

func TestMetricsHandlerExposesRegistrations(t *testing.T) {
	m := NewMetrics()
	m.RecordRegistration("DUPLICATE_LICENSE")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `driver_registrations_total{outcome="DUPLICATE_LICENSE"} 1`)
}
