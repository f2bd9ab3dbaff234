package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StatementsBuilt = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statements_built_total",
			Help: "Statements served, by statement type and outcome",
		},
		[]string{"statement", "status"},
	)

	BuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "statement_build_duration_seconds",
			Help:    "Time to serve a statement, cache hits included",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"statement"},
	)

	CacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "statement_cache_results_total",
			Help: "Report cache lookups by result",
		},
		[]string{"result"}, // hit, miss
	)

	UnmappedEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_unmapped_entries_total",
			Help: "Ledger entries dropped because their classification could not be placed",
		},
		[]string{"scope", "reason"},
	)

	EntriesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_entries_ingested_total",
			Help: "Ledger entries accepted by the ingest endpoint",
		},
	)

	KafkaPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kafka_publish_errors_total",
			Help: "Total number of Kafka publish errors",
		},
	)
)
