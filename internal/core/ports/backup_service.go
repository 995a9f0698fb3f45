package ports

import (
	"context"
	"time"

	"github.com/deppen/custody-registry/internal/core/domain"
)

// Snapshot is a maintenance export of every collection. Account secrets are
// stripped before the snapshot leaves the core.
type Snapshot struct {
	GeneratedAt time.Time
	GeneratedBy string
	Accounts    []domain.UserAccount
	Records     []domain.Record
	AuditTrail  []domain.AuditLogEntry
}

// BackupService produces maintenance snapshots.
type BackupService interface {
	Export(ctx context.Context, actor domain.Principal) (*Snapshot, error)
}
