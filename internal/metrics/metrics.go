package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ridepulse",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	uploads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "ridepulse",
			Name:      "uploads_total",
			Help:      "Successfully ingested datasets.",
		},
	)

	uploadRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ridepulse",
			Name:      "upload_rows",
			Help:      "Row counts of ingested datasets.",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
		},
	)

	aggregateRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ridepulse",
			Name:      "aggregate_requests_total",
			Help:      "Aggregate view requests by view name.",
		},
		[]string{"view"},
	)

	exports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ridepulse",
			Name:      "exports_total",
			Help:      "Dataset exports by format.",
		},
		[]string{"format"},
	)

	pipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ridepulse",
			Name:      "pipeline_duration_seconds",
			Help:      "Time to clean and derive an uploaded dataset.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			uploads,
			uploadRows,
			aggregateRequests,
			exports,
			pipelineDuration,
		)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncUpload records one ingested dataset with its row count.
func IncUpload(rows int) {
	uploads.Inc()
	uploadRows.Observe(float64(rows))
}

// IncAggregate increments the counter for an aggregate view.
func IncAggregate(view string) {
	aggregateRequests.WithLabelValues(view).Inc()
}

// IncExport increments the counter for an export format.
func IncExport(format string) {
	exports.WithLabelValues(format).Inc()
}

// ObservePipeline records the duration of one pipeline run.
func ObservePipeline(seconds float64) {
	pipelineDuration.Observe(seconds)
}
