// Package metrics exposes Prometheus metrics for paging iterators and exports.
//
// Metrics are registered on a caller-supplied prometheus.Registerer so that tests
// and embedders can use private registries:
//
//	m := metrics.NewPagingMetrics(prometheus.DefaultRegisterer)
//	ca, err := connectedasset.New(ctx, server, guid, connectedasset.WithObserver(m))
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/ocf/pkg/paging"
)

const namespace = "ocf"

// PagingMetrics records paging events. It implements paging.Observer.
type PagingMetrics struct {
	pagesFetched   *prometheus.CounterVec
	fetchFailures  *prometheus.CounterVec
	elementsServed *prometheus.CounterVec
	pageSize       *prometheus.HistogramVec
	fetchDuration  *prometheus.HistogramVec
}

var _ paging.Observer = (*PagingMetrics)(nil)

// NewPagingMetrics creates the paging metrics and registers them on reg.
func NewPagingMetrics(reg prometheus.Registerer) *PagingMetrics {
	f := promauto.With(reg)
	return &PagingMetrics{
		pagesFetched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "paging",
			Name:      "pages_fetched_total",
			Help:      "Pages retrieved from the property server",
		}, []string{"iterator"}),
		fetchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "paging",
			Name:      "page_fetch_failures_total",
			Help:      "Page retrievals that failed",
		}, []string{"iterator"}),
		elementsServed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "paging",
			Name:      "elements_served_total",
			Help:      "Elements returned by Next",
		}, []string{"iterator"}),
		pageSize: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "paging",
			Name:      "page_size_elements",
			Help:      "Number of elements in each fetched page",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"iterator"}),
		fetchDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "paging",
			Name:      "fetch_duration_seconds",
			Help:      "Time spent retrieving a page, including failures",
			Buckets: []float64{
				0.0005, // in-memory servers
				0.001,
				0.005,
				0.01,
				0.05, // local databases
				0.1,
				0.5, // remote servers
				1,
				5,
			},
		}, []string{"iterator", "outcome"}),
	}
}

// PageFetched implements paging.Observer.
func (m *PagingMetrics) PageFetched(iterator string, size int, elapsed time.Duration) {
	m.pagesFetched.WithLabelValues(iterator).Inc()
	m.pageSize.WithLabelValues(iterator).Observe(float64(size))
	m.fetchDuration.WithLabelValues(iterator, "success").Observe(elapsed.Seconds())
}

// PageFetchFailed implements paging.Observer.
func (m *PagingMetrics) PageFetchFailed(iterator string, elapsed time.Duration) {
	m.fetchFailures.WithLabelValues(iterator).Inc()
	m.fetchDuration.WithLabelValues(iterator, "failure").Observe(elapsed.Seconds())
}

// ElementServed implements paging.Observer.
func (m *PagingMetrics) ElementServed(iterator string) {
	m.elementsServed.WithLabelValues(iterator).Inc()
}

// ExportMetrics records export progress.
type ExportMetrics struct {
	elementsWritten *prometheus.CounterVec
	bytesWritten    *prometheus.CounterVec
	exports         *prometheus.CounterVec
	duration        prometheus.Histogram
}

// NewExportMetrics creates the export metrics and registers them on reg.
func NewExportMetrics(reg prometheus.Registerer) *ExportMetrics {
	f := promauto.With(reg)
	return &ExportMetrics{
		elementsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "elements_written_total",
			Help:      "Elements written to export sinks",
		}, []string{"kind"}),
		bytesWritten: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "bytes_written_total",
			Help:      "Bytes written to export sinks after compression",
		}, []string{"sink"}),
		exports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "runs_total",
			Help:      "Completed exports by status",
		}, []string{"status"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "duration_seconds",
			Help:      "Wall time of an export",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

// ElementsWritten adds n elements of kind.
func (m *ExportMetrics) ElementsWritten(kind string, n int) {
	m.elementsWritten.WithLabelValues(kind).Add(float64(n))
}

// BytesWritten adds n bytes written to sink.
func (m *ExportMetrics) BytesWritten(sink string, n int64) {
	m.bytesWritten.WithLabelValues(sink).Add(float64(n))
}

// ExportFinished records the outcome and duration of an export.
func (m *ExportMetrics) ExportFinished(err error, elapsed time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.exports.WithLabelValues(status).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// Timer provides a simple timing mechanism for measuring operation durations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It can be called more than
// once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
