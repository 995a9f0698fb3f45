// Package metrics defines and registers the custom Prometheus metrics of the
// custody registry. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry on package init via
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "custody"

// ── Authentication ───────────────────────────────────────────────────────────

// AuthAttemptsTotal counts sign-in attempts.
// Label:
//   - outcome: "authenticated", "must_change_password" or a reject reason
//     (e.g. "blocked", "bad_credentials")
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of sign-in attempts, by outcome.",
	},
	[]string{"outcome"},
)

// PasswordChangesTotal counts password change attempts.
// Label:
//   - result: "ok" or "rejected"
var PasswordChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "password_changes_total",
		Help:      "Total number of password change attempts, by result.",
	},
	[]string{"result"},
)

// ── Accounts ─────────────────────────────────────────────────────────────────

// AccessDecisionsTotal counts approve/deny decisions on account requests.
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Total number of access request decisions, by decision.",
	},
	[]string{"decision"},
)

// HeartbeatsTotal counts presence heartbeats written.
var HeartbeatsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "presence_heartbeats_total",
		Help:      "Total number of presence heartbeats recorded.",
	},
)

// ── Records & audit ──────────────────────────────────────────────────────────

// RecordWritesTotal counts record mutations.
// Labels:
//   - op: "create", "edit", "delete", "complete"
//   - unit: the record's unit of origin
var RecordWritesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "record_writes_total",
		Help:      "Total number of record mutations, by operation and unit.",
	},
	[]string{"op", "unit"},
)

// AuditEntriesTotal counts entries appended to the audit trail.
var AuditEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_entries_total",
		Help:      "Total number of audit entries appended, by category.",
	},
	[]string{"category"},
)

// AuthorizationDenialsTotal counts capability checks that failed.
var AuthorizationDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denials_total",
		Help:      "Total number of refused capability checks, by action.",
	},
	[]string{"action"},
)

// StorageOperationDuration measures blob store round trips.
// Labels:
//   - driver: "memory", "mongo", "redis", "sqlite"
//   - op: "get" or "set"
var StorageOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "storage_operation_duration_seconds",
		Help:      "Duration of blob store operations.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"driver", "op"},
)
