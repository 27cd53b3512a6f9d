// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK         = "ok"
	OutcomeError      = "error"
	OutcomeContention = "contention"
)

var LedgerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "assettrack_ledger_operations_total",
	Help: "Ledger operations by operation and outcome.",
}, []string{"operation", "outcome"})

var ActivityQueueFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "assettrack_activity_enqueue_failures_total",
	Help: "Best-effort activity events that could not be enqueued.",
})
