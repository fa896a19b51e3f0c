// Package observability wires Prometheus instrumentation for the FloodAura
// service.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the API.
// It satisfies the core.MetricsCollector interface.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec   // labels: method, endpoint, status
	RequestDuration *prometheus.HistogramVec // labels: method, endpoint

	VerdictsTotal     *prometheus.CounterVec // labels: route_status
	SignalFallbacks   prometheus.Counter     // evaluations served from the seasonal estimate
	EventsIngested    prometheus.Counter
	AssistantRequests *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates all API metrics on a private registry, so repeated
// construction in tests never trips duplicate registration.
func NewMetrics(service string) *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "floodaura",
			Name:        "http_requests_total",
			Help:        "HTTP requests by method, endpoint, and status code.",
			ConstLabels: prometheus.Labels{"service": service},
		}, []string{"method", "endpoint", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   "floodaura",
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency in seconds.",
			ConstLabels: prometheus.Labels{"service": service},
			Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "endpoint"}),
		VerdictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodaura",
			Name:      "verdicts_total",
			Help:      "Route verdicts issued, by resulting route status.",
		}, []string{"route_status"}),
		SignalFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodaura",
			Name:      "signal_fallbacks_total",
			Help:      "Evaluations that fell back to the seasonal estimate.",
		}),
		EventsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "floodaura",
			Name:      "flood_events_ingested_total",
			Help:      "Flood events accepted through the ingest endpoint.",
		}),
		AssistantRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "floodaura",
			Name:      "assistant_requests_total",
			Help:      "Assistant chat requests by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.VerdictsTotal,
		m.SignalFallbacks,
		m.EventsIngested,
		m.AssistantRequests,
	)

	return m
}

// RecordRequest implements core.MetricsCollector.
func (m *Metrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.RequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordVerdict counts one issued verdict by its route status.
func (m *Metrics) RecordVerdict(routeStatus string) {
	m.VerdictsTotal.WithLabelValues(routeStatus).Inc()
}

// RecordSignalFallback counts one evaluation that had no live weather signal.
func (m *Metrics) RecordSignalFallback() {
	m.SignalFallbacks.Inc()
}

// RecordEventIngested counts one accepted flood event.
func (m *Metrics) RecordEventIngested() {
	m.EventsIngested.Inc()
}

// RecordAssistantRequest counts one chat request by outcome.
func (m *Metrics) RecordAssistantRequest(outcome string) {
	m.AssistantRequests.WithLabelValues(outcome).Inc()
}

// Handler returns the /metrics scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
