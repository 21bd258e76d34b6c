package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// MetricsRecorder receives ingestion measurements.
type MetricsRecorder interface {
	UploadStarted()
	UploadFinished(state AuditState, elapsed time.Duration)
	RowsProcessed(success, failed, warnings int)
}

// NopRecorder discards all measurements.
type NopRecorder struct{}

func (NopRecorder) UploadStarted()                           {}
func (NopRecorder) UploadFinished(AuditState, time.Duration) {}
func (NopRecorder) RowsProcessed(int, int, int)              {}

// PrometheusRecorder exports ingestion metrics on its own registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	uploadsInFlight prometheus.Gauge
	uploadsTotal    *prometheus.CounterVec
	uploadDuration  *prometheus.HistogramVec
	rowsTotal       *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder with Go runtime and process
// collectors registered alongside the ingestion metrics.
func NewPrometheusRecorder() *PrometheusRecorder {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		uploadsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ingest_uploads_in_flight",
			Help: "Uploads currently being processed.",
		}),
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_uploads_total",
			Help: "Finished uploads by final audit status.",
		}, []string{"status"}),
		uploadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ingest_upload_duration_seconds",
			Help:    "Duration of upload processing.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
		rowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_rows_total",
			Help: "Processed rows by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(r.uploadsInFlight, r.uploadsTotal, r.uploadDuration, r.rowsTotal)
	return r
}

// Registry returns the registry to expose over HTTP.
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *PrometheusRecorder) UploadStarted() {
	r.uploadsInFlight.Inc()
}

func (r *PrometheusRecorder) UploadFinished(state AuditState, elapsed time.Duration) {
	r.uploadsInFlight.Dec()
	r.uploadsTotal.WithLabelValues(string(state)).Inc()
	r.uploadDuration.WithLabelValues(string(state)).Observe(elapsed.Seconds())
}

func (r *PrometheusRecorder) RowsProcessed(success, failed, warnings int) {
	r.rowsTotal.WithLabelValues("success").Add(float64(success))
	r.rowsTotal.WithLabelValues("failed").Add(float64(failed))
	r.rowsTotal.WithLabelValues("warning").Add(float64(warnings))
}
