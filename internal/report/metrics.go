package report

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsPresenter exports every report as Prometheus series.
type MetricsPresenter struct {
	passes      *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
	passSeconds *prometheus.HistogramVec
	nodeSeconds *prometheus.GaugeVec
	cumSeconds  *prometheus.GaugeVec
	nodeErrors  *prometheus.GaugeVec
}

// NewMetricsPresenter registers its collectors with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func NewMetricsPresenter(reg prometheus.Registerer) *MetricsPresenter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &MetricsPresenter{
		passes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nodegrid_passes_total",
			Help: "Evaluation passes presented, by tree and trigger.",
		}, []string{"tree", "trigger"}),
		outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "nodegrid_node_outcomes_total",
			Help: "Planned nodes by outcome.",
		}, []string{"tree", "outcome"}),
		passSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nodegrid_pass_duration_seconds",
			Help:    "Wall time of one evaluation pass.",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
		}, []string{"tree"}),
		nodeSeconds: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nodegrid_node_update_seconds",
			Help: "Duration of the last Compute of a node.",
		}, []string{"tree", "node"}),
		cumSeconds: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nodegrid_node_cumulative_update_seconds",
			Help: "Time spent producing a node's outputs, upstream included.",
		}, []string{"tree", "node"}),
		nodeErrors: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "nodegrid_node_error",
			Help: "1 if the node carries an error after the last pass.",
		}, []string{"tree", "node"}),
	}
}

func (m *MetricsPresenter) Present(_ context.Context, r *Report) error {
	m.passes.WithLabelValues(r.TreeID, r.Trigger).Inc()
	m.passSeconds.WithLabelValues(r.TreeID).Observe(r.Elapsed.Seconds())
	for _, res := range r.Results {
		m.outcomes.WithLabelValues(r.TreeID, res.Outcome.String()).Inc()
	}
	for _, n := range r.Nodes {
		m.nodeSeconds.WithLabelValues(r.TreeID, n.NodeID).Set(n.Duration.Seconds())
		errored := 0.0
		if n.Error != "" {
			errored = 1
		}
		m.nodeErrors.WithLabelValues(r.TreeID, n.NodeID).Set(errored)
		if d, ok := r.CumulativeTimes[n.NodeID]; ok {
			m.cumSeconds.WithLabelValues(r.TreeID, n.NodeID).Set(d.Seconds())
		} else {
			m.cumSeconds.DeleteLabelValues(r.TreeID, n.NodeID)
		}
	}
	return nil
}
