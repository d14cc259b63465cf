package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	PayablesCreated prometheus.Counter
	PayablesDeleted prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PayablesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "aprovame_payables_created_total",
			Help: "Total number of payables persisted, from single requests and batches",
		}),
		PayablesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "aprovame_payables_deleted_total",
			Help: "Total number of payables soft-deleted",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.PayablesCreated.Inc()
}

func (m *Metrics) IncrementDeleted() {
	m.PayablesDeleted.Inc()
}
