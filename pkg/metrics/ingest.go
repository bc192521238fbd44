package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics records per-batch outcomes of the CSV pipeline.
type IngestMetrics struct {
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
	batches  *prometheus.CounterVec
}

// NewIngestMetrics registers the ingestion metrics on the provided registerer.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	if reg == nil {
		return &IngestMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upload_batch_duration_seconds",
		Help:    "Wall time spent processing one CSV upload batch.",
		Buckets: prometheus.DefBuckets,
	}, []string{"tier"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upload_rows_total",
		Help: "CSV rows processed, labeled by tier and outcome.",
	}, []string{"tier", "outcome"})
	batches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upload_batches_total",
		Help: "CSV upload batches processed, labeled by tier and status.",
	}, []string{"tier", "status"})
	reg.MustRegister(duration, rows, batches)
	return &IngestMetrics{
		duration: duration,
		rows:     rows,
		batches:  batches,
	}
}

// ObserveBatch records one finished batch.
func (m *IngestMetrics) ObserveBatch(tier string, status string, duration time.Duration) {
	if m == nil || m.batches == nil {
		return
	}
	m.batches.WithLabelValues(normalizeLabel(tier), normalizeLabel(status)).Inc()
	m.duration.WithLabelValues(normalizeLabel(tier)).Observe(duration.Seconds())
}

// AddRows records row outcomes for a batch.
func (m *IngestMetrics) AddRows(tier string, outcome string, count int) {
	if m == nil || m.rows == nil || count <= 0 {
		return
	}
	m.rows.WithLabelValues(normalizeLabel(tier), normalizeLabel(outcome)).Add(float64(count))
}
