// Package metrics exposes the core's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SnapshotsIngested counts authoritative snapshots applied to the
	// record stores.
	SnapshotsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_snapshots_ingested_total",
			Help: "Number of full snapshots ingested, per collection.",
		},
		[]string{"collection"},
	)

	// RecordsDropped counts malformed snapshot entries dropped during
	// ingestion.
	RecordsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_records_dropped_total",
			Help: "Number of malformed snapshot entries dropped, per collection.",
		},
		[]string{"collection"},
	)

	// SinkWrites counts background document writes by outcome
	// (ok, error, dropped).
	SinkWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_sink_writes_total",
			Help: "Number of background writes to the document sink, per collection and status.",
		},
		[]string{"collection", "status"},
	)

	// ReordersRejected counts reorder requests refused because the view
	// was not reorderable or the target was stale.
	ReordersRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_reorders_rejected_total",
			Help: "Number of rejected reorder requests, per collection and reason.",
		},
		[]string{"collection", "reason"},
	)
)
