// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── RPC ────────────────────────────────────────────────────────────────────

var RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "duesbook",
	Subsystem: "rpc",
	Name:      "requests_total",
	Help:      "RPC calls by procedure and result code.",
}, []string{"procedure", "code"})

var RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "duesbook",
	Subsystem: "rpc",
	Name:      "duration_seconds",
	Help:      "RPC latency by procedure.",
	Buckets:   prometheus.DefBuckets,
}, []string{"procedure"})

// ─── Ledger ─────────────────────────────────────────────────────────────────

var LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "duesbook",
	Subsystem: "ledger",
	Name:      "operations_total",
	Help:      "Mutating ledger operations by action.",
}, []string{"action"})

var RolloverConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "duesbook",
	Subsystem: "ledger",
	Name:      "rollover_conflicts_total",
	Help:      "Rollovers rejected because the period was already rolled over.",
})

var OpenDues = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "duesbook",
	Subsystem: "ledger",
	Name:      "open_dues",
	Help:      "Number of pairwise dues in the most recently computed period.",
}, []string{"period"})

// ─── Cache ──────────────────────────────────────────────────────────────────

var CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "duesbook",
	Subsystem: "cache",
	Name:      "lookups_total",
	Help:      "Period snapshot cache lookups by result (hit, miss).",
}, []string{"result"})

var CacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "duesbook",
	Subsystem: "cache",
	Name:      "invalidations_total",
	Help:      "Period snapshots dropped because of writes.",
})

// ─── Events ─────────────────────────────────────────────────────────────────

var EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "duesbook",
	Subsystem: "events",
	Name:      "published_total",
	Help:      "Activity events handed to the publisher by result (ok, error).",
}, []string{"result"})
