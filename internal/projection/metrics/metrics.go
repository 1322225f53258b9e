package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for projection processing.
type Metrics struct {
	EventsProjected prometheus.Counter
	EventsSkipped   prometheus.Counter
	LagChecks       *prometheus.CounterVec
}

// New creates and registers all projection metrics.
func New() *Metrics {
	return &Metrics{
		EventsProjected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tempo_projection_events_total",
			Help: "Total number of feed events folded into read models",
		}),
		EventsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tempo_projection_events_skipped_total",
			Help: "Total number of feed events dropped as unprocessable",
		}),
		LagChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tempo_projection_lag_checks_total",
			Help: "Total number of consistency checks, by resulting status",
		}, []string{"status"}),
	}
}
