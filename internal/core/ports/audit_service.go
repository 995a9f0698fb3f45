package ports

import (
	"context"

	"github.com/deppen/custody-registry/internal/core/domain"
)

// AuditInput is what a component reports; the trail assigns ID and time.
type AuditInput struct {
	ActorEmail string
	Action     string
	Details    string
	Unit       domain.Unit
	Category   domain.AuditCategory
}

// AuditService is the append-only, bounded audit trail.
type AuditService interface {
	Append(ctx context.Context, in AuditInput) (*domain.AuditLogEntry, error)
	List(ctx context.Context, actor domain.Principal) ([]domain.AuditLogEntry, error)
}
