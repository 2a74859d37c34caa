package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "legal_intake"

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge
	requestRejected *prometheus.CounterVec

	intakeTotal      *prometheus.CounterVec
	intakeDuration   *prometheus.HistogramVec
	matchedTemplates *prometheus.HistogramVec
	documentsTotal   *prometheus.CounterVec
	publishRetries   *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	requestRejected := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "rejected_total",
			Help:      "Requests rejected before reaching a handler.",
		},
		[]string{"service", "reason"},
	)
	intakeTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "requests_total",
			Help:      "Analyze requests by category and outcome.",
		},
		[]string{"service", "category", "status"},
	)
	intakeDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "duration_seconds",
			Help:      "Analyze-and-record duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)
	matchedTemplates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "matched_templates",
			Help:      "Distribution of matched templates per recorded session.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13},
		},
		[]string{"service"},
	)
	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "documents_total",
			Help:      "Attached documents by extraction outcome.",
		},
		[]string{"service", "outcome"},
	)
	publishRetries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "publish_retries_total",
			Help:      "Retried outbound calls by operation.",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		requestRejected,
		intakeTotal,
		intakeDuration,
		matchedTemplates,
		documentsTotal,
		publishRetries,
	)

	return &HTTPServerMetrics{
		registry:         registry,
		requestTotal:     requestTotal,
		requestDuration:  requestDuration,
		requestInFlight:  requestInFlight,
		requestRejected:  requestRejected,
		intakeTotal:      intakeTotal,
		intakeDuration:   intakeDuration,
		matchedTemplates: matchedTemplates,
		documentsTotal:   documentsTotal,
		publishRetries:   publishRetries,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/templates/"):
		return "/v1/templates/{id}"
	default:
		return path
	}
}

// RecordIntake observes one analyze request. An empty category is reported
// as "none".
func (m *HTTPServerMetrics) RecordIntake(service, category string, matched int, duration time.Duration, err error) {
	if category == "" {
		category = "none"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.intakeTotal.WithLabelValues(service, category, status).Inc()
	m.intakeDuration.WithLabelValues(service).Observe(duration.Seconds())
	if err == nil {
		m.matchedTemplates.WithLabelValues(service).Observe(float64(matched))
	}
}

// RecordDocument counts attached documents: "extracted" when fields were
// searched in decoded content, "stored" when the file was kept undecoded.
func (m *HTTPServerMetrics) RecordDocument(service, outcome string) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.documentsTotal.WithLabelValues(service, outcome).Inc()
}

func (m *HTTPServerMetrics) RecordRejected(service, reason string) {
	m.requestRejected.WithLabelValues(service, reason).Inc()
}

func (m *HTTPServerMetrics) RecordRetry(service, operation string) {
	m.publishRetries.WithLabelValues(service, operation).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}
