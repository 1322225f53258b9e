package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the aggregate engine.
type Metrics struct {
	Rehydrations    prometheus.Counter
	SnapshotHits    prometheus.Counter
	SnapshotMisses  prometheus.Counter
	SnapshotsTaken  prometheus.Counter
	SnapshotsFailed prometheus.Counter
	AppendRetries   prometheus.Counter
}

// New creates and registers all engine metrics.
func New() *Metrics {
	return &Metrics{
		Rehydrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tempo_rehydrations_total",
			Help: "Total number of aggregate rehydrations",
		}),
		SnapshotHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tempo_snapshot_hits_total",
			Help: "Rehydrations that started from a snapshot",
		}),
		SnapshotMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tempo_snapshot_misses_total",
			Help: "Rehydrations that replayed the full stream",
		}),
		SnapshotsTaken: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tempo_snapshots_taken_total",
			Help: "Snapshots written after threshold crossings",
		}),
		SnapshotsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tempo_snapshots_failed_total",
			Help: "Snapshot writes that failed (swallowed, never fatal)",
		}),
		AppendRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tempo_append_retries_total",
			Help: "Command retries after optimistic-concurrency conflicts",
		}),
	}
}
