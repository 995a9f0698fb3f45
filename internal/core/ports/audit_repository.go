package ports

import (
	"context"

	"github.com/deppen/custody-registry/internal/core/domain"
)

// AuditRepository persists the bounded audit trail, newest entry first.
type AuditRepository interface {
	LoadAuditTrail(ctx context.Context) ([]domain.AuditLogEntry, error)
	SaveAuditTrail(ctx context.Context, entries []domain.AuditLogEntry) error
}
