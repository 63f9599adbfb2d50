// Package metrics defines and registers all custom Prometheus metrics for the
// order API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation (promauto) and exposed by the router on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "logistics"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts registration and login attempts.
// Labels:
//   - operation: "register" or "login"
//   - result: "success", "invalid", "duplicate" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of registration and login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// ── Order metrics ─────────────────────────────────────────────────────────────

// OrdersCreatedTotal counts newly created orders.
// Label:
//   - priority: "low", "normal", "high" or "urgent"
var OrdersCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created, by priority.",
	},
	[]string{"priority"},
)

// OrdersByStatus is refreshed periodically by the statistics job.
// Label:
//   - status: order lifecycle status
var OrdersByStatus = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "orders_by_status",
		Help:      "Number of stored orders in each lifecycle status.",
	},
	[]string{"status"},
)

// ── Delivery update metrics ───────────────────────────────────────────────────

// DeliveryUpdatesProcessedTotal counts status updates applied successfully.
// Labels:
//   - status: the new order status
//   - mode: "sync" (direct API call) or "async" (dispatcher)
var DeliveryUpdatesProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_updates_processed_total",
		Help:      "Total number of delivery status updates applied.",
	},
	[]string{"status", "mode"},
)

// DeliveryUpdatesErrorsTotal counts updates that failed.
// Label:
//   - reason: "invalid_transition", "order_not_found", "validation" or "apply_failed"
var DeliveryUpdatesErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_updates_errors_total",
		Help:      "Total number of delivery status updates that failed.",
	},
	[]string{"reason"},
)

// DeliveryUpdatesDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new update, processed)
var DeliveryUpdatesDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_updates_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// DeliveryUpdatesQueueDepth tracks the number of updates waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index
var DeliveryUpdatesQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "delivery_updates_queue_depth",
		Help:      "Current number of updates pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// DeliveryUpdateDuration measures how long a queued update takes to process.
// Label:
//   - outcome: "ok" or "error"
var DeliveryUpdateDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "delivery_update_duration_seconds",
		Help:      "Duration of delivery update processing from dequeue to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"outcome"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventPublishErrorsTotal counts events a sink failed to accept.
// Label:
//   - sink: "mongodb" or "redis"
var EventPublishErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_publish_errors_total",
		Help:      "Total number of order events a sink failed to accept.",
	},
	[]string{"sink"},
)
