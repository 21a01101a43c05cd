package observability

import (
	"github.com/aretw0/act/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by history hooks.
type Metrics struct {
	Events      *prometheus.CounterVec
	FailedNodes *prometheus.CounterVec
	UndoDepth   *prometheus.GaugeVec
	RedoDepth   *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "act_history_events_total",
				Help: "Total number of history commits, undos and redos",
			},
			[]string{"model", "type"},
		),
		FailedNodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "act_history_failed_nodes_total",
				Help: "Bones whose geometry could not be applied during undo or redo",
			},
			[]string{"model"},
		),
		UndoDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "act_history_undo_depth",
				Help: "Number of steps on the undo stack",
			},
			[]string{"model"},
		),
		RedoDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "act_history_redo_depth",
				Help: "Number of steps on the redo stack",
			},
			[]string{"model"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Events, m.FailedNodes, m.UndoDepth, m.RedoDepth)
	}
	return m
}

// Hooks returns history hooks recording into m.
func (m *Metrics) Hooks() domain.HistoryHooks {
	record := func(e *domain.HistoryEvent) {
		m.Events.WithLabelValues(e.ModelName, string(e.Type)).Inc()
		if e.Failed > 0 {
			m.FailedNodes.WithLabelValues(e.ModelName).Add(float64(e.Failed))
		}
		m.UndoDepth.WithLabelValues(e.ModelName).Set(float64(e.UndoCount))
		m.RedoDepth.WithLabelValues(e.ModelName).Set(float64(e.RedoCount))
	}
	return domain.HistoryHooks{OnCommit: record, OnUndo: record, OnRedo: record}
}
