package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
)

// BackupService produces maintenance snapshots for the master.
type BackupService struct {
	accounts ports.AccountRepository
	records  ports.RecordRepository
	trail    ports.AuditRepository
	audit    ports.AuditService
	now      func() time.Time
	log      zerolog.Logger
}

// NewBackupService returns a BackupService.
func NewBackupService(accounts ports.AccountRepository, records ports.RecordRepository, trail ports.AuditRepository, audit ports.AuditService, log zerolog.Logger) *BackupService {
	return &BackupService{accounts: accounts, records: records, trail: trail, audit: audit, now: time.Now, log: log}
}

// Export returns every collection. Account secrets are stripped.
func (s *BackupService) Export(ctx context.Context, actor domain.Principal) (*ports.Snapshot, error) {
	if err := authorize(actor, domain.ActionExportBackup); err != nil {
		return nil, err
	}
	accounts, err := s.accounts.LoadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	records, err := s.records.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	trail, err := s.trail.LoadAuditTrail(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	stripped := make([]domain.UserAccount, len(accounts))
	for i, a := range accounts {
		a.PasswordHash = ""
		stripped[i] = a
	}
	accounts = stripped

	snap := &ports.Snapshot{
		GeneratedAt: s.now().UTC(),
		GeneratedBy: actor.Email,
		Accounts:    accounts,
		Records:     records,
		AuditTrail:  trail,
	}
	if _, err := s.audit.Append(ctx, ports.AuditInput{
		ActorEmail: actor.Email,
		Action:     domain.ActionBackupExported,
		Details:    fmt.Sprintf("snapshot exported: %d accounts, %d records, %d audit entries", len(accounts), len(records), len(trail)),
		Unit:       actor.HomeUnit,
		Category:   domain.CategorySystem,
	}); err != nil {
		return nil, err
	}
	s.log.Info().Str("by", actor.Email).Msg("backup snapshot exported")
	return snap, nil
}
