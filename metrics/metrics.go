// Package metrics holds the Prometheus collectors of the quote service.
// They register on the default registry and are served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Recalculations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_recalculations_total",
		Help: "Totals recomputations triggered by sheet changes.",
	})

	Submissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_submissions_total",
		Help: "Submitted quote sheets.",
	})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_exports_total",
		Help: "Exported sheet artifacts by delivery method.",
	}, []string{"method"})

	ExportFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_export_failures_total",
		Help: "Sheet captures that failed to render.",
	})

	ExportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_export_duration_seconds",
		Help:    "Time spent rendering a sheet artifact.",
		Buckets: prometheus.DefBuckets,
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quote_sessions_active",
		Help: "Sheet sessions currently held in memory.",
	})

	EventsSaved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_events_saved_total",
		Help: "Diagnostic events written by the event worker, by result.",
	}, []string{"result"})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quote_events_dropped_total",
		Help: "Diagnostic events dropped because the worker buffer was full.",
	})
)
