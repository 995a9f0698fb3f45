package ports

import (
	"context"
	"time"

	"github.com/deppen/custody-registry/internal/core/domain"
)

// CreateRecordInput carries the operator-supplied fields of a new record.
// Context is the viewing context selected by the principal; it only decides
// the unit of origin for the master.
type CreateRecordInput struct {
	Type        domain.RecordType
	SubjectName string
	FileNumber  string
	Destination string
	Room        string
	ScheduledAt time.Time
	Risk        domain.Risk
	Notes       string
	Context     domain.ViewContext
}

// UpdateRecordInput carries an edit. The unit of origin is deliberately
// absent: it cannot change after creation.
type UpdateRecordInput struct {
	Type        *domain.RecordType
	SubjectName *string
	FileNumber  *string
	Destination *string
	Room        *string
	ScheduledAt *time.Time
	Risk        *domain.Risk
	Status      *domain.RecordStatus
	Notes       *string
}

// RecordFilter narrows the visible scope further.
type RecordFilter struct {
	Context domain.ViewContext
	Search  string // partial match on subject name, file number or destination
	Date    string // YYYY-MM-DD prefix of ScheduledAt
	Type    domain.RecordType
	Status  domain.RecordStatus
}

// RecordSummary holds dashboard counters over the visible scope.
type RecordSummary struct {
	ActiveEscorts   int
	Interned        int
	HighRiskOpen    int
	Closed          int
	PendingRequests int
}

// RecordService exposes record reads and capability-checked writes.
type RecordService interface {
	ListVisible(ctx context.Context, p domain.Principal, filter RecordFilter) ([]domain.Record, error)
	Summary(ctx context.Context, p domain.Principal, viewContext domain.ViewContext) (*RecordSummary, error)
	CreateRecord(ctx context.Context, p domain.Principal, in CreateRecordInput) (*domain.Record, error)
	EditRecord(ctx context.Context, p domain.Principal, id string, in UpdateRecordInput) (*domain.Record, error)
	DeleteRecord(ctx context.Context, p domain.Principal, id string) error
	CompleteRecord(ctx context.Context, p domain.Principal, id string, at time.Time) (*domain.Record, error)
}
