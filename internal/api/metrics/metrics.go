// Package metrics defines and registers all custom Prometheus metrics for the
// Verma Hardware storefront. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts credential operations.
// Labels:
//   - operation: "login", "signup", "create_admin", "verify", "logout"
//   - result: "ok", "rejected", "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of credential operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// GuardDecisionsTotal counts route guard outcomes.
// Label:
//   - decision: "render", "wait", "redirect_login", "redirect_landing"
var GuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "guard_decisions_total",
		Help:      "Total number of route guard decisions, by outcome.",
	},
	[]string{"decision"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// ProductMutationsTotal counts successful catalog writes.
// Label:
//   - operation: "create", "update", "delete"
var ProductMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_mutations_total",
		Help:      "Total number of successful product writes, by operation.",
	},
	[]string{"operation"},
)

// ProductViewsTotal counts product views recorded into recently-viewed history.
var ProductViewsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_views_recorded_total",
		Help:      "Total number of product views recorded into user history.",
	},
)

// ViewQueueDepth tracks pending view events per dispatcher worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ViewQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "view_queue_depth",
		Help:      "Current number of view events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// ── Contact metrics ───────────────────────────────────────────────────────────

// ContactsSubmittedTotal counts stored contact inquiries.
var ContactsSubmittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "contacts_submitted_total",
		Help:      "Total number of contact inquiries stored.",
	},
)

// ContactExportRows measures how many rows each CSV export contained.
var ContactExportRows = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "contact_export_rows",
		Help:      "Number of contact rows written per CSV export.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
	},
)
