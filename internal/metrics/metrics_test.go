package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	c := New()

	c.RecordVitalSample(nil)
	c.RecordVitalSample(nil)
	c.RecordVitalSample(errors.New("quota"))
	c.RecordCollaboratorCall("insights", true, 10*time.Millisecond)
	c.RecordSOSEvent("dispatched")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.vitalSamplesTotal.WithLabelValues("stored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.vitalSamplesTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.collaboratorCalls.WithLabelValues("insights", "fallback")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sosEventsTotal.WithLabelValues("dispatched")))
}

func TestCollector_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.RecordStorageError("save")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.storageErrors.WithLabelValues("save")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.storageErrors.WithLabelValues("save")))
}

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.RecordHTTPRequest(http.MethodGet, "/api/v1/vitals", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{endpoint="/api/v1/vitals",method="GET",status_code="200"} 1`)
}
