// Package metrics provides Prometheus metrics for the dashboard service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	ChatMessages     *prometheus.CounterVec
	ErrorsTotal      *prometheus.CounterVec
	ProjectsTracked  prometheus.Gauge

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projectdesk_requests_total",
				Help: "Total API requests by route and status.",
			},
			[]string{"route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "projectdesk_request_duration_seconds",
				Help:    "API request duration by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projectdesk_analyses_total",
				Help: "Total analysis runs by depth and result.",
			},
			[]string{"depth", "result"},
		),
		AnalysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "projectdesk_analysis_duration_seconds",
				Help:    "Wall time of analysis runs including simulated latency.",
				Buckets: prometheus.DefBuckets,
			},
		),
		ChatMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projectdesk_chat_messages_total",
				Help: "Chat messages appended to the transcript by role.",
			},
			[]string{"role"},
		),
		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "projectdesk_errors_total",
				Help: "Total errors by component and type.",
			},
			[]string{"component", "type"},
		),
		ProjectsTracked: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "projectdesk_projects_tracked",
				Help: "Number of projects currently in the store.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.AnalysesTotal,
		m.AnalysisDuration,
		m.ChatMessages,
		m.ErrorsTotal,
		m.ProjectsTracked,
	)

	return m
}

// Handler returns an http.Handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordRequest increments the request counter.
func (m *Metrics) RecordRequest(route, status string) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
}

// RecordAnalysis increments the analysis counter.
func (m *Metrics) RecordAnalysis(depth, result string) {
	m.AnalysesTotal.WithLabelValues(depth, result).Inc()
}

// RecordChatMessage increments the chat message counter.
func (m *Metrics) RecordChatMessage(role string) {
	m.ChatMessages.WithLabelValues(role).Inc()
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(component, errType string) {
	m.ErrorsTotal.WithLabelValues(component, errType).Inc()
}

// SetProjectsTracked updates the tracked project gauge.
func (m *Metrics) SetProjectsTracked(n float64) {
	m.ProjectsTracked.Set(n)
}

// ObserveRequestDuration records a request duration.
func (m *Metrics) ObserveRequestDuration(route string, seconds float64) {
	m.RequestDuration.WithLabelValues(route).Observe(seconds)
}

// ObserveAnalysisDuration records an analysis wall time.
func (m *Metrics) ObserveAnalysisDuration(seconds float64) {
	m.AnalysisDuration.Observe(seconds)
}
