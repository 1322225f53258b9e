package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the event log.
type Metrics struct {
	EventsAppended   *prometheus.CounterVec
	AppendConflicts  prometheus.Counter
	AppendDuration   prometheus.Histogram
	StreamReadLength prometheus.Histogram
}

// New creates and registers all event log metrics.
func New() *Metrics {
	return &Metrics{
		EventsAppended: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tempo_events_appended_total",
			Help: "Total number of events appended, by aggregate type",
		}, []string{"aggregate_type"}),
		AppendConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tempo_append_conflicts_total",
			Help: "Total number of optimistic-concurrency conflicts on append",
		}),
		AppendDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tempo_append_duration_seconds",
			Help:    "Duration of event append batches (command critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		StreamReadLength: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tempo_stream_read_events",
			Help:    "Number of events folded per rehydration read",
			Buckets: []float64{1, 5, 10, 20, 50, 100, 250, 500},
		}),
	}
}

// ObserveAppend records one successful append batch.
func (m *Metrics) ObserveAppend(aggregateType string, batch int, start time.Time) {
	m.EventsAppended.WithLabelValues(aggregateType).Add(float64(batch))
	m.AppendDuration.Observe(time.Since(start).Seconds())
}

// IncrementConflict records one optimistic-concurrency conflict.
func (m *Metrics) IncrementConflict() {
	m.AppendConflicts.Inc()
}
