package domain

import "time"

// RecordType classifies a custody movement.
type RecordType string

const (
	RecordEscort            RecordType = "escort"
	RecordInternment        RecordType = "internment"
	RecordExternalOperation RecordType = "external_operation"
)

// Valid reports whether t is a known record type.
func (t RecordType) Valid() bool {
	switch t {
	case RecordEscort, RecordInternment, RecordExternalOperation:
		return true
	}
	return false
}

// Risk is the assessed risk level of a movement.
type Risk string

const (
	RiskLow    Risk = "low"
	RiskMedium Risk = "medium"
	RiskHigh   Risk = "high"
)

// Valid reports whether r is a known risk level.
func (r Risk) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// RecordStatus represents the lifecycle state of a record.
type RecordStatus string

const (
	RecordPending    RecordStatus = "pending"
	RecordInProgress RecordStatus = "in_progress"
	RecordCompleted  RecordStatus = "completed"
	RecordCancelled  RecordStatus = "cancelled"
)

var recordTransitions = map[RecordStatus][]RecordStatus{
	RecordPending:    {RecordInProgress, RecordCompleted, RecordCancelled},
	RecordInProgress: {RecordCompleted, RecordCancelled},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s RecordStatus) CanTransitionTo(next RecordStatus) bool {
	for _, allowed := range recordTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Closed reports whether no further transitions are possible.
func (s RecordStatus) Closed() bool {
	return s == RecordCompleted || s == RecordCancelled
}

// RedactedIdentity replaces subject identity fields on external operations.
const RedactedIdentity = "[REDACTED]"

// Record is one custody-movement entry. UnitOfOrigin is assigned at creation
// and never changes afterwards.
type Record struct {
	ID           string       `json:"id"`
	Type         RecordType   `json:"type"`
	SubjectName  string       `json:"subject_name"`
	FileNumber   string       `json:"file_number"`
	Destination  string       `json:"destination"`
	Room         string       `json:"room,omitempty"`
	ScheduledAt  time.Time    `json:"scheduled_at"`
	Risk         Risk         `json:"risk"`
	Status       RecordStatus `json:"status"`
	Notes        string       `json:"notes,omitempty"`
	UnitOfOrigin Unit         `json:"unit_of_origin"`
	CreatedBy    string       `json:"created_by"`
	CreatedAt    time.Time    `json:"created_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

// Redact clears subject identity when the record type requires it.
func (r *Record) Redact() {
	if r.Type == RecordExternalOperation {
		r.SubjectName = RedactedIdentity
		r.FileNumber = RedactedIdentity
	}
}
