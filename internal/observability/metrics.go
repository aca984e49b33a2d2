package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors of one registry.
type Metrics struct {
	Registry            *prometheus.Registry
	BatchesTotal        *prometheus.CounterVec
	BookmarksOrganized  prometheus.Counter
	ClassifyLatency     *prometheus.HistogramVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the organizer's collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		BatchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmark_batches_total",
				Help: "Classification batches processed",
			},
			[]string{"status"}, // ok, external_error, malformed, error
		),
		BookmarksOrganized: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bookmarks_organized_total",
				Help: "Bookmarks that received a category",
			},
		),
		ClassifyLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookmark_classify_latency_seconds",
				Help:    "Latency of one classification batch",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
			},
			[]string{"status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~30s
			},
			[]string{"method", "path", "status"},
		),
	}
}

// RecordBatch records the outcome of a single classification batch.
// A nil receiver is a no-op so callers can run without metrics.
func (m *Metrics) RecordBatch(status string, items int, d time.Duration) {
	if m == nil {
		return
	}
	m.BatchesTotal.WithLabelValues(status).Inc()
	m.ClassifyLatency.WithLabelValues(status).Observe(d.Seconds())
	if status == "ok" {
		m.BookmarksOrganized.Add(float64(items))
	}
}

// RecordHTTPRequest records the duration of one HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, path, statusLabel(status)).Observe(d.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
