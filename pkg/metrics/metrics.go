// Package metrics defines the Prometheus instrumentation for the
// reconciliation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clover"

var (
	// UploadRunsTotal counts reconciliation runs by terminal status.
	UploadRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_runs_total",
		Help:      "Reconciliation runs by status",
	}, []string{"status"})

	// UploadRowsTotal counts processed rows by outcome.
	UploadRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_rows_total",
		Help:      "Processed sale rows by outcome",
	}, []string{"outcome"})

	// UploadRunDuration observes end-to-end run duration in seconds.
	UploadRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upload_run_duration_seconds",
		Help:      "End-to-end reconciliation run duration",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	// MatchDecisionsTotal counts household resolutions by reason.
	MatchDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "match_decisions_total",
		Help:      "Household match decisions by reason",
	}, []string{"reason"})

	// GroupsInFlight tracks row groups currently being resolved.
	GroupsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "groups_in_flight",
		Help:      "Row groups currently being resolved",
	})

	// EventsPublishedTotal counts pipeline events published to Kafka.
	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_published_total",
		Help:      "Pipeline events published by type and status",
	}, []string{"event_type", "status"})
)

// Row outcome label values.
const (
	RowOutcomeSaleCreated = "sale_created"
	RowOutcomeError       = "error"
)

// Run status label values.
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
