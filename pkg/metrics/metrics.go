// Package metrics exposes Prometheus collectors for the execution engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's collectors. A nil *Metrics is valid and records
// nothing, so wiring metrics stays optional.
type Metrics struct {
	executionsTotal   *prometheus.CounterVec
	nodesTotal        *prometheus.CounterVec
	nodeLogFailures   prometheus.Counter
	executionDuration prometheus.Histogram
}

// New registers the engine collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		executionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowbot_executions_total",
			Help: "Completed engine executions by final status.",
		}, []string{"status"}),
		nodesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowbot_nodes_executed_total",
			Help: "Executed nodes by type and outcome.",
		}, []string{"type", "status"}),
		nodeLogFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowbot_node_log_failures_total",
			Help: "Node log writes that failed and were skipped.",
		}),
		executionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowbot_execution_duration_seconds",
			Help:    "Wall-clock duration of engine executions.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		}),
	}

	reg.MustRegister(m.executionsTotal, m.nodesTotal, m.nodeLogFailures, m.executionDuration)

	return m
}

func (m *Metrics) ObserveExecution(success bool, seconds float64) {
	if m == nil {
		return
	}

	status := "completed"
	if !success {
		status = "failed"
	}

	m.executionsTotal.WithLabelValues(status).Inc()
	m.executionDuration.Observe(seconds)
}

func (m *Metrics) ObserveNode(nodeType string, success bool) {
	if m == nil {
		return
	}

	status := "success"
	if !success {
		status = "failed"
	}

	m.nodesTotal.WithLabelValues(nodeType, status).Inc()
}

func (m *Metrics) NodeLogFailure() {
	if m == nil {
		return
	}

	m.nodeLogFailures.Inc()
}
