package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector backed by Prometheus.
type PrometheusCollector struct {
	assignments       *prometheus.CounterVec
	assignmentLatency *prometheus.HistogramVec
	operations        *prometheus.CounterVec
	operationLatency  *prometheus.HistogramVec
	studentsMoved     prometheus.Counter
}

var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus creates the collectors and registers them with reg. reg
// defaults to prometheus.DefaultRegisterer and namespace to "mentorship".
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "mentorship"
	}

	p := &PrometheusCollector{
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assignment",
			Name:      "requests_total",
			Help:      "Assignment requests by role, assignee kind and outcome.",
		}, []string{"role", "kind", "outcome"}),
		assignmentLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "assignment",
			Name:      "duration_seconds",
			Help:      "Time spent applying an assignment, including the transaction.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"role"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "roster",
			Name:      "operations_total",
			Help:      "Create and reset operations by outcome.",
		}, []string{"op", "outcome"}),
		operationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "roster",
			Name:      "operation_duration_seconds",
			Help:      "Time spent on create and reset operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		studentsMoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assignment",
			Name:      "students_moved_total",
			Help:      "Students whose mentor field changed.",
		}),
	}

	reg.MustRegister(p.assignments, p.assignmentLatency, p.operations, p.operationLatency, p.studentsMoved)

	return p
}

// RecordAssignment implements Collector.
func (p *PrometheusCollector) RecordAssignment(role, kind, outcome string, seconds float64) {
	if role == "" {
		role = "unknown"
	}
	p.assignments.WithLabelValues(role, kind, outcome).Inc()
	p.assignmentLatency.WithLabelValues(role).Observe(seconds)
}

// RecordOperation implements Collector.
func (p *PrometheusCollector) RecordOperation(op, outcome string, seconds float64) {
	p.operations.WithLabelValues(op, outcome).Inc()
	p.operationLatency.WithLabelValues(op).Observe(seconds)
}

// RecordStudentsMoved implements Collector.
func (p *PrometheusCollector) RecordStudentsMoved(n int) {
	if n <= 0 {
		return
	}
	p.studentsMoved.Add(float64(n))
}
