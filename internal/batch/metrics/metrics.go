package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons recorded by intake.
const (
	ReasonSize     = "size"
	ReasonValue    = "value"
	ReasonDate     = "emission_date"
	ReasonAssignor = "assignor"
	ReasonPublish  = "publish"
)

type Metrics struct {
	BatchesAccepted   prometheus.Counter
	BatchesRejected   *prometheus.CounterVec
	BatchSize         prometheus.Histogram
	ItemsProcessed    *prometheus.CounterVec
	BatchDuration     prometheus.Histogram
	DuplicatesSkipped prometheus.Counter
	NotifyFailures    prometheus.Counter
	DeliveryFailures  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BatchesAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "aprovame_batches_accepted_total",
			Help: "Batches that passed intake validation and were queued",
		}),
		BatchesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aprovame_batches_rejected_total",
			Help: "Batches rejected at intake, by reason",
		}, []string{"reason"}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aprovame_batch_size_items",
			Help:    "Number of payables per accepted batch",
			Buckets: []float64{1, 10, 100, 500, 1000, 2500, 5000, 10000},
		}),
		ItemsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aprovame_batch_items_processed_total",
			Help: "Batch items processed, by outcome",
		}, []string{"outcome"}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "aprovame_batch_processing_duration_seconds",
			Help:    "Wall-clock time to process one batch",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
		DuplicatesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "aprovame_batches_duplicate_skipped_total",
			Help: "Redelivered batches skipped by the dedup guard",
		}),
		NotifyFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "aprovame_batch_notify_failures_total",
			Help: "Completion reports that failed to send",
		}),
		DeliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "aprovame_batch_delivery_failures_total",
			Help: "Queued batches the broker never acknowledged",
		}),
	}
}

func (m *Metrics) IncrementAccepted(size int) {
	m.BatchesAccepted.Inc()
	m.BatchSize.Observe(float64(size))
}

func (m *Metrics) IncrementRejected(reason string) {
	m.BatchesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveItems(succeeded, failed int) {
	m.ItemsProcessed.WithLabelValues("success").Add(float64(succeeded))
	m.ItemsProcessed.WithLabelValues("failure").Add(float64(failed))
}

func (m *Metrics) ObserveBatchDuration(start time.Time) {
	m.BatchDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementDuplicate() {
	m.DuplicatesSkipped.Inc()
}

func (m *Metrics) IncrementNotifyFailure() {
	m.NotifyFailures.Inc()
}

func (m *Metrics) IncrementDeliveryFailure() {
	m.DeliveryFailures.Inc()
}
