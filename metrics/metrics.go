// Package metrics exposes the small set of counters/gauges named in
// SPEC_FULL.md §6 on a dedicated internal listener, grounded on the
// promauto + promhttp pattern used across the retrieved pack (e.g.
// contract-data-processor/go/server/prometheus_metrics.go).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LedgerApplyTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hedged_ledger_apply_total",
		Help: "Total number of StateUpdates folded into the ledger.",
	})

	ScheduledActionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hedged_scheduled_actions_total",
		Help: "Total number of actions scheduled by the decision engine.",
	})

	OpenOrdersGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hedged_open_orders",
		Help: "Number of orders currently open on the exchange.",
	})

	SupervisorRestartsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hedged_supervisor_restarts_total",
		Help: "Total number of times the supervisor has restarted the task group.",
	})
)

// Handler returns the promhttp handler to mount on the metrics listener.
func Handler() http.Handler {
	return promhttp.Handler()
}
