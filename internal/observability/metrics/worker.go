package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics is the audit view of recorded sessions as seen by the worker.
type WorkerMetrics struct {
	registry *prometheus.Registry

	sessionsTotal   *prometheus.CounterVec
	tagsPerSession  *prometheus.HistogramVec
	extractedFields *prometheus.CounterVec
	eventLag        *prometheus.HistogramVec
}

func NewWorkerMetrics() *WorkerMetrics {
	registry := prometheus.NewRegistry()

	sessionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "sessions_total",
			Help:      "Recorded sessions received by category and attachment presence.",
		},
		[]string{"service", "category", "has_file"},
	)
	tagsPerSession := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "session_tags",
			Help:      "Distribution of derived tags per session.",
			Buckets:   []float64{0, 1, 2, 3},
		},
		[]string{"service"},
	)
	extractedFields := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "extracted_fields_total",
			Help:      "Fields found in attached documents.",
		},
		[]string{"service", "field"},
	)
	eventLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "event_lag_seconds",
			Help:      "Delay between session creation and receipt by the worker.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"service"},
	)

	registry.MustRegister(sessionsTotal, tagsPerSession, extractedFields, eventLag)

	return &WorkerMetrics{
		registry:        registry,
		sessionsTotal:   sessionsTotal,
		tagsPerSession:  tagsPerSession,
		extractedFields: extractedFields,
		eventLag:        eventLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) ObserveSession(service, category string, hasFile bool, tags int) {
	if category == "" {
		category = "none"
	}
	m.sessionsTotal.WithLabelValues(service, category, strconv.FormatBool(hasFile)).Inc()
	m.tagsPerSession.WithLabelValues(service).Observe(float64(tags))
}

func (m *WorkerMetrics) ObserveExtractedField(service, field string) {
	m.extractedFields.WithLabelValues(service, field).Inc()
}

func (m *WorkerMetrics) ObserveEventLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.eventLag.WithLabelValues(service).Observe(lag.Seconds())
}
