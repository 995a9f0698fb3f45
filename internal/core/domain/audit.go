package domain

import "time"

// AuditCategory groups audit entries for review.
type AuditCategory string

const (
	CategorySecurity    AuditCategory = "security"
	CategoryOperational AuditCategory = "operational"
	CategorySystem      AuditCategory = "system"
)

// DefaultAuditCapacity is the size of the audit ring.
const DefaultAuditCapacity = 500

// Audit action tags.
const (
	ActionMasterSetup      = "MasterSetup"
	ActionLogin            = "Login"
	ActionLoginFailed      = "LoginFailed"
	ActionPasswordChanged  = "PasswordChanged"
	ActionAccountRequested = "AccountRequested"
	ActionAccountCreated   = "AccountCreated"
	ActionAccountUpdated   = "AccountUpdated"
	ActionAccountBlocked   = "AccountBlocked"
	ActionAccountUnblocked = "AccountUnblocked"
	ActionAccountRemoved   = "AccountRemoved"
	ActionAccessDecision   = "AccessDecision"
	ActionRecordCreated    = "RecordCreated"
	ActionRecordUpdated    = "RecordUpdated"
	ActionRecordDeleted    = "RecordDeleted"
	ActionRecordCompleted  = "RecordCompleted"
	ActionBackupExported   = "BackupExported"
)

// SystemActor is recorded when no principal performed the action.
const SystemActor = "system"

const unknownUnitPlaceholder = "n/a"

// AuditLogEntry is an immutable fact in the audit trail.
type AuditLogEntry struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	ActorEmail string        `json:"actor_email"`
	Action     string        `json:"action"`
	Details    string        `json:"details"`
	Unit       string        `json:"unit"`
	Category   AuditCategory `json:"category"`
}

// PrependBounded returns a new trail with entry at the head and at most
// capacity entries; the oldest entries fall off the tail.
func PrependBounded(trail []AuditLogEntry, entry AuditLogEntry, capacity int) []AuditLogEntry {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	n := len(trail) + 1
	if n > capacity {
		n = capacity
	}
	out := make([]AuditLogEntry, 0, n)
	out = append(out, entry)
	for _, e := range trail {
		if len(out) == n {
			break
		}
		out = append(out, e)
	}
	return out
}

// UnitLabel returns the unit recorded on an entry, falling back to a
// placeholder when the actor has none.
func UnitLabel(u Unit) string {
	if u == "" {
		return unknownUnitPlaceholder
	}
	return string(u)
}
