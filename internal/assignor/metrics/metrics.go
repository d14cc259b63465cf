package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AssignorsCreated   prometheus.Counter
	AssignorsDeleted   prometheus.Counter
	UniquenessRejected *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AssignorsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "aprovame_assignors_created_total",
			Help: "Total number of assignors created",
		}),
		AssignorsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "aprovame_assignors_deleted_total",
			Help: "Total number of assignors soft-deleted",
		}),
		UniquenessRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "aprovame_assignor_conflicts_total",
			Help: "Assignor writes rejected because a live assignor holds the same document or email",
		}, []string{"field"}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.AssignorsCreated.Inc()
}

func (m *Metrics) IncrementDeleted() {
	m.AssignorsDeleted.Inc()
}

func (m *Metrics) IncrementConflict(field string) {
	m.UniquenessRejected.WithLabelValues(field).Inc()
}
