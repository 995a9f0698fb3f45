package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
	"github.com/deppen/custody-registry/internal/pkg/metrics"
)

// AuditService is the append-only audit trail. Entries are prepended and the
// trail is trimmed to capacity on every append.
type AuditService struct {
	repo     ports.AuditRepository
	capacity int
	now      func() time.Time
	log      zerolog.Logger

	mu sync.Mutex
}

// NewAuditService returns an AuditService. A non-positive capacity falls back
// to domain.DefaultAuditCapacity.
func NewAuditService(repo ports.AuditRepository, capacity int, log zerolog.Logger) *AuditService {
	if capacity <= 0 {
		capacity = domain.DefaultAuditCapacity
	}
	return &AuditService{repo: repo, capacity: capacity, now: time.Now, log: log}
}

// Append records one entry at the head of the trail.
func (s *AuditService) Append(ctx context.Context, in ports.AuditInput) (*domain.AuditLogEntry, error) {
	actor := in.ActorEmail
	if actor == "" {
		actor = domain.SystemActor
	}
	entry := domain.AuditLogEntry{
		ID:         newAuditID(),
		Timestamp:  s.now().UTC(),
		ActorEmail: actor,
		Action:     in.Action,
		Details:    in.Details,
		Unit:       domain.UnitLabel(in.Unit),
		Category:   in.Category,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trail, err := s.repo.LoadAuditTrail(ctx)
	if err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}
	trail = domain.PrependBounded(trail, entry, s.capacity)
	if err := s.repo.SaveAuditTrail(ctx, trail); err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}

	metrics.AuditEntriesTotal.WithLabelValues(string(entry.Category)).Inc()
	s.log.Debug().
		Str("action", entry.Action).
		Str("actor", entry.ActorEmail).
		Str("category", string(entry.Category)).
		Msg("audit entry appended")

	return &entry, nil
}

// List returns the whole trail, newest first. Only the master may read it.
func (s *AuditService) List(ctx context.Context, actor domain.Principal) ([]domain.AuditLogEntry, error) {
	if err := authorize(actor, domain.ActionViewAudit); err != nil {
		return nil, err
	}
	trail, err := s.repo.LoadAuditTrail(ctx)
	if err != nil {
		return nil, fmt.Errorf("list audit trail: %w", err)
	}
	return trail, nil
}
