// Package metrics defines and registers all custom Prometheus metrics for the
// AssetVerse API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "assetverse"

// ── Request lifecycle ─────────────────────────────────────────────────────────

// RequestsCreatedTotal counts asset requests entering the pending state.
var RequestsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_created_total",
		Help:      "Total number of asset requests created.",
	},
)

// RequestTransitionsTotal counts committed status transitions.
// Label:
//   - to: the new status ("approved", "rejected", "returned")
var RequestTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "request_transitions_total",
		Help:      "Total number of committed asset request status transitions.",
	},
	[]string{"to"},
)

// ApprovalFailuresTotal counts approvals that did not commit.
// Label:
//   - reason: "validation", "hr_not_found", "capacity_exceeded", "conflict",
//     "employee_not_found", "asset_not_found", "insufficient_stock", "lock_busy", "internal"
var ApprovalFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "approval_failures_total",
		Help:      "Total number of approvals rejected or rolled back, by reason.",
	},
	[]string{"reason"},
)

// CompensationsTotal counts saga compensation steps.
// Labels:
//   - step: "revert_status", "remove_affiliation"
//   - result: "ok" or "failed"
var CompensationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "approval_compensations_total",
		Help:      "Total number of approval compensation steps executed.",
	},
	[]string{"step", "result"},
)

// InventoryAdjustmentsTotal counts stock movements.
// Label:
//   - direction: "out" (approval) or "in" (return)
var InventoryAdjustmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inventory_adjustments_total",
		Help:      "Total number of inventory adjustments, by direction.",
	},
	[]string{"direction"},
)

// ── Audit pipeline ────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the current number of events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of request events pending in each audit worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsDroppedTotal counts events discarded because a worker channel was full.
var AuditEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_dropped_total",
		Help:      "Total number of request events dropped on a full audit queue.",
	},
)

// ── Packages & payments ───────────────────────────────────────────────────────

// CheckoutsTotal counts checkout attempts.
// Label:
//   - result: "free", "redirect", "confirmed", "replayed", "unpaid", "error"
var CheckoutsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkouts_total",
		Help:      "Total number of package checkout operations, by result.",
	},
	[]string{"result"},
)

// PackageUsage reports active affiliations against the package limit.
// Labels:
//   - company: company name
//   - kind: "used" or "limit"
var PackageUsage = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "package_usage",
		Help:      "Active employee affiliations and package limit per company.",
	},
	[]string{"company", "kind"},
)

// ── HTTP ──────────────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts served HTTP requests.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status code.",
	},
	[]string{"method", "route", "code"},
)

// HTTPRequestDuration measures handler latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP request handling.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)
