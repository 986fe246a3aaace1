// Package metrics holds the business counters of the inventory API. HTTP
// request metrics come from the echoprometheus middleware; everything here is
// incremented by handlers after a service call returns.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "inventory"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "disabled", "invalid_request" or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts accounts created through self-service registration.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts registered.",
	},
)

// TransactionsRecordedTotal counts stock movements that were persisted.
// Label:
//   - type: "in" or "out"
var TransactionsRecordedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_recorded_total",
		Help:      "Total number of inventory transactions recorded, by type.",
	},
	[]string{"type"},
)

// StockUnitsMovedTotal sums the absolute quantities moved.
// Label:
//   - type: "in" or "out"
var StockUnitsMovedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_units_moved_total",
		Help:      "Total stock units moved by recorded transactions, by type.",
	},
	[]string{"type"},
)

// IdempotentReplaysTotal counts requests answered from a completed
// Idempotency-Key instead of moving stock again.
var IdempotentReplaysTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "idempotent_replays_total",
		Help:      "Total number of transaction requests replayed from an idempotency key.",
	},
)

// TransactionFailuresTotal counts transaction writes that failed.
// Label:
//   - reason: "validation", "not_found", "duplicate_request" or "store"
var TransactionFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transaction_failures_total",
		Help:      "Total number of failed inventory transaction writes, by reason.",
	},
	[]string{"reason"},
)
