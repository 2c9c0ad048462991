package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector handles Prometheus metrics collection. Each collector owns its
// registry so several can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	vitalSamplesTotal   *prometheus.CounterVec
	collaboratorCalls   *prometheus.CounterVec
	collaboratorLatency *prometheus.HistogramVec
	storageErrors       *prometheus.CounterVec
	sosEventsTotal      *prometheus.CounterVec
}

// New creates a collector with the process and Go runtime collectors attached
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		vitalSamplesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vitals_samples_total",
				Help: "Total number of heart-rate samples produced by the sampler",
			},
			[]string{"status"},
		),
		collaboratorCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "collaborator_calls_total",
				Help: "Total number of text-generation calls by task and outcome",
			},
			[]string{"task", "outcome"},
		),
		collaboratorLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "collaborator_call_duration_seconds",
				Help:    "Duration of text-generation calls in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"task"},
		),
		storageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_errors_total",
				Help: "Total number of local store failures surfaced to callers",
			},
			[]string{"operation"},
		),
		sosEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sos_events_total",
				Help: "Total number of SOS countdown events",
			},
			[]string{"event"},
		),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.vitalSamplesTotal,
		c.collaboratorCalls,
		c.collaboratorLatency,
		c.storageErrors,
		c.sosEventsTotal,
	)
	return c
}

// RecordHTTPRequest records HTTP request metrics
func (c *Collector) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordVitalSample counts a sampler tick
func (c *Collector) RecordVitalSample(err error) {
	status := "stored"
	if err != nil {
		status = "failed"
	}
	c.vitalSamplesTotal.WithLabelValues(status).Inc()
}

// RecordCollaboratorCall records a text-generation call. fallback marks calls
// that degraded to the fixed payload.
func (c *Collector) RecordCollaboratorCall(task string, fallback bool, duration time.Duration) {
	outcome := "ok"
	if fallback {
		outcome = "fallback"
	}
	c.collaboratorCalls.WithLabelValues(task, outcome).Inc()
	c.collaboratorLatency.WithLabelValues(task).Observe(duration.Seconds())
}

// RecordStorageError counts a store failure
func (c *Collector) RecordStorageError(operation string) {
	c.storageErrors.WithLabelValues(operation).Inc()
}

// RecordSOSEvent counts an SOS event: started, cancelled or dispatched
func (c *Collector) RecordSOSEvent(event string) {
	c.sosEventsTotal.WithLabelValues(event).Inc()
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the Prometheus metrics HTTP handler
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
