package ports

import (
	"context"
	"time"

	"github.com/deppen/custody-registry/internal/core/domain"
)

// PresenceEntry is one row of the presence roster.
type PresenceEntry struct {
	Email    string
	FullName string
	Role     domain.Role
	Unit     domain.Unit
	LastSeen time.Time
	Online   bool
}

// PresenceService records heartbeats and derives online status.
type PresenceService interface {
	Heartbeat(ctx context.Context, email string) error
	Roster(ctx context.Context, actor domain.Principal) ([]PresenceEntry, error)
}
