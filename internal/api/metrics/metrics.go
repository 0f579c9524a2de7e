// Package metrics defines and registers all custom Prometheus metrics for the
// feedback board. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init through promauto; importing the package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "feedback"

// ── Feedback metrics ──────────────────────────────────────────────────────────

// PostsCreatedTotal counts newly created posts.
// Label:
//   - theme: the post theme after defaulting (e.g. "Tooling", "Other")
var PostsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "posts_created_total",
		Help:      "Total number of feedback posts created, by theme.",
	},
	[]string{"theme"},
)

// UpvotesTotal counts applied upvote toggles.
// Label:
//   - direction: "up" or "down"
var UpvotesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upvotes_total",
		Help:      "Total number of upvote toggles applied, by direction.",
	},
	[]string{"direction"},
)

// UpdatesAddedTotal counts updates appended to posts.
// Label:
//   - role: the author role ("admin" or "employer")
var UpdatesAddedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "updates_added_total",
		Help:      "Total number of post updates added, by author role.",
	},
	[]string{"role"},
)

// AuthAttemptsTotal counts login and signup attempts.
// Labels:
//   - action: "login" or "signup"
//   - result: "ok", "invalid", "conflict" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by action and result.",
	},
	[]string{"action", "result"},
)

// RateLimitedTotal counts requests rejected by the per-IP limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected with 429.",
	},
)

// ── Event fan-out metrics ────────────────────────────────────────────────────

// EventsQueueDepth tracks the current number of feed events waiting in each worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of feed events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// EventsDroppedTotal counts feed events discarded because a worker channel was full.
var EventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of feed events dropped on a full dispatcher queue.",
	},
)

// WebsocketClients tracks currently connected websocket clients.
var WebsocketClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "websocket_clients",
		Help:      "Number of connected websocket clients.",
	},
)

// ── Store metrics ─────────────────────────────────────────────────────────────

// StoreOperationDuration measures whole-collection store calls.
// Labels:
//   - op: "load", "save" or "ping"
//   - kind: "users", "feedback", "updates" (empty for ping)
//   - result: "ok" or "error"
var StoreOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_operation_duration_seconds",
		Help:      "Duration of persistence store operations.",
		Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
	},
	[]string{"op", "kind", "result"},
)
