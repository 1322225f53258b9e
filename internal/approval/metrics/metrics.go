package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the monthly approval workflow.
type Metrics struct {
	WorkflowOutcomes *prometheus.CounterVec
	Compensations    prometheus.Counter
	CascadeSize      prometheus.Histogram
	WorkflowDuration prometheus.Histogram
}

// New creates and registers all workflow metrics.
func New() *Metrics {
	return &Metrics{
		WorkflowOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tempo_approval_workflows_total",
			Help: "Workflow invocations by command and outcome",
		}, []string{"command", "outcome"}),
		Compensations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tempo_approval_compensations_total",
			Help: "Compensating events appended after partial cascade failures",
		}),
		CascadeSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tempo_approval_cascade_children",
			Help:    "Number of child aggregates per workflow invocation",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		WorkflowDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tempo_approval_workflow_duration_seconds",
			Help:    "End-to-end duration of workflow invocations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// ObserveOutcome records one finished workflow invocation.
func (m *Metrics) ObserveOutcome(command, outcome string, children int, start time.Time) {
	m.WorkflowOutcomes.WithLabelValues(command, outcome).Inc()
	m.CascadeSize.Observe(float64(children))
	m.WorkflowDuration.Observe(time.Since(start).Seconds())
}

// IncrementCompensations counts compensating events appended.
func (m *Metrics) IncrementCompensations(n int) {
	m.Compensations.Add(float64(n))
}
