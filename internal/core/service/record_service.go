package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
	"github.com/deppen/custody-registry/internal/pkg/metrics"
)

// RecordService handles custody records within the caller's scope.
type RecordService struct {
	repo     ports.RecordRepository
	accounts ports.AccountRepository
	audit    ports.AuditService
	now      func() time.Time
	log      zerolog.Logger

	mu sync.Mutex
}

// NewRecordService returns a RecordService. The account repository is only
// read, to count pending requests for the dashboard.
func NewRecordService(repo ports.RecordRepository, accounts ports.AccountRepository, audit ports.AuditService, log zerolog.Logger) *RecordService {
	return &RecordService{repo: repo, accounts: accounts, audit: audit, now: time.Now, log: log}
}

// ListVisible returns the records p may see, narrowed by filter and ordered
// by schedule, most recent first.
func (s *RecordService) ListVisible(ctx context.Context, p domain.Principal, filter ports.RecordFilter) ([]domain.Record, error) {
	records, err := s.repo.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	visible := domain.VisibleRecords(p, filter.Context, records)

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := visible[:0]
	for _, r := range visible {
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Date != "" && !strings.HasPrefix(r.ScheduledAt.Format(time.RFC3339), filter.Date) {
			continue
		}
		if search != "" && !matches(r, search) {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledAt.After(out[j].ScheduledAt)
	})
	return out, nil
}

func matches(r domain.Record, needle string) bool {
	for _, field := range []string{r.SubjectName, r.FileNumber, r.Destination} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Summary computes the dashboard counters over the visible scope. Pending
// access requests are only counted for the master.
func (s *RecordService) Summary(ctx context.Context, p domain.Principal, viewContext domain.ViewContext) (*ports.RecordSummary, error) {
	records, err := s.repo.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("record summary: %w", err)
	}
	var sum ports.RecordSummary
	for _, r := range domain.VisibleRecords(p, viewContext, records) {
		closed := r.Status.Closed()
		switch {
		case closed:
			sum.Closed++
		case r.Type == domain.RecordEscort:
			sum.ActiveEscorts++
		case r.Type == domain.RecordInternment && r.CompletedAt == nil:
			sum.Interned++
		}
		if !closed && r.Risk == domain.RiskHigh {
			sum.HighRiskOpen++
		}
	}

	if p.Role == domain.RoleMaster {
		accounts, err := s.accounts.LoadAccounts(ctx)
		if err != nil {
			return nil, fmt.Errorf("record summary: %w", err)
		}
		for _, a := range accounts {
			if a.Status == domain.AccountPending {
				sum.PendingRequests++
			}
		}
	}
	return &sum, nil
}

// CreateRecord stores a new record. Its unit of origin comes from the
// principal, never from the payload.
func (s *RecordService) CreateRecord(ctx context.Context, p domain.Principal, in ports.CreateRecordInput) (*domain.Record, error) {
	if err := authorize(p, domain.ActionCreateRecord); err != nil {
		return nil, err
	}
	if in.Risk == "" {
		in.Risk = domain.RiskLow
	}
	record := domain.Record{
		ID:           newRecordID(),
		Type:         in.Type,
		SubjectName:  strings.TrimSpace(in.SubjectName),
		FileNumber:   strings.TrimSpace(in.FileNumber),
		Destination:  strings.TrimSpace(in.Destination),
		Room:         strings.TrimSpace(in.Room),
		ScheduledAt:  in.ScheduledAt.UTC(),
		Risk:         in.Risk,
		Status:       domain.RecordPending,
		Notes:        strings.TrimSpace(in.Notes),
		UnitOfOrigin: domain.CreationUnit(p, in.Context),
		CreatedBy:    p.Email,
		CreatedAt:    s.now().UTC(),
	}
	if err := validateRecord(&record); err != nil {
		return nil, err
	}
	record.Redact()

	s.mu.Lock()
	records, err := s.repo.LoadRecords(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("create record: %w", err)
	}
	records = append(records, record)
	err = s.repo.SaveRecords(ctx, records)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	if err := s.recordWrite(ctx, p, "create", domain.ActionRecordCreated, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// EditRecord applies a master edit. The unit of origin is never touched and
// status changes must follow the record lifecycle.
func (s *RecordService) EditRecord(ctx context.Context, p domain.Principal, id string, in ports.UpdateRecordInput) (*domain.Record, error) {
	if err := authorize(p, domain.ActionEditRecord); err != nil {
		return nil, err
	}
	updated, err := s.update(ctx, id, func(r *domain.Record) error {
		if in.Status != nil && *in.Status != r.Status {
			if !r.Status.CanTransitionTo(*in.Status) {
				return fmt.Errorf("%w: cannot move record %s from %s to %s", domain.ErrState, r.ID, r.Status, *in.Status)
			}
			r.Status = *in.Status
			if r.Status == domain.RecordCompleted {
				at := s.now().UTC()
				r.CompletedAt = &at
			}
		}
		if in.Type != nil {
			r.Type = *in.Type
		}
		if in.SubjectName != nil {
			r.SubjectName = strings.TrimSpace(*in.SubjectName)
		}
		if in.FileNumber != nil {
			r.FileNumber = strings.TrimSpace(*in.FileNumber)
		}
		if in.Destination != nil {
			r.Destination = strings.TrimSpace(*in.Destination)
		}
		if in.Room != nil {
			r.Room = strings.TrimSpace(*in.Room)
		}
		if in.ScheduledAt != nil {
			r.ScheduledAt = in.ScheduledAt.UTC()
		}
		if in.Risk != nil {
			r.Risk = *in.Risk
		}
		if in.Notes != nil {
			r.Notes = strings.TrimSpace(*in.Notes)
		}
		if err := validateRecord(r); err != nil {
			return err
		}
		r.Redact()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.recordWrite(ctx, p, "edit", domain.ActionRecordUpdated, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteRecord removes a record permanently.
func (s *RecordService) DeleteRecord(ctx context.Context, p domain.Principal, id string) error {
	if err := authorize(p, domain.ActionDeleteRecord); err != nil {
		return err
	}

	s.mu.Lock()
	records, err := s.repo.LoadRecords(ctx)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("delete record: %w", err)
	}
	i := recordIndex(records, id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: record %s", domain.ErrNotFound, id)
	}
	removed := records[i]
	records = append(records[:i], records[i+1:]...)
	err = s.repo.SaveRecords(ctx, records)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	return s.recordWrite(ctx, p, "delete", domain.ActionRecordDeleted, &removed)
}

// CompleteRecord discharges a record: status completed and completion time
// set. Any principal whose scope includes the record may do it.
func (s *RecordService) CompleteRecord(ctx context.Context, p domain.Principal, id string, at time.Time) (*domain.Record, error) {
	if err := authorize(p, domain.ActionCompleteRecord); err != nil {
		return nil, err
	}
	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()

	updated, err := s.update(ctx, id, func(r *domain.Record) error {
		if !domain.InScope(p, domain.ViewGlobal, r.UnitOfOrigin) {
			return fmt.Errorf("%w: record %s belongs to another unit", domain.ErrAuthorization, r.ID)
		}
		if r.Status.Closed() {
			return fmt.Errorf("%w: record %s is already %s", domain.ErrState, r.ID, r.Status)
		}
		r.Status = domain.RecordCompleted
		r.CompletedAt = &at
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.recordWrite(ctx, p, "complete", domain.ActionRecordCompleted, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *RecordService) update(ctx context.Context, id string, fn func(*domain.Record) error) (*domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.LoadRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	i := recordIndex(records, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: record %s", domain.ErrNotFound, id)
	}
	next := records[i]
	if err := fn(&next); err != nil {
		return nil, err
	}
	records[i] = next
	if err := s.repo.SaveRecords(ctx, records); err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	return &next, nil
}

// recordWrite emits the operational audit entry and the write metric.
func (s *RecordService) recordWrite(ctx context.Context, p domain.Principal, op, action string, r *domain.Record) error {
	metrics.RecordWritesTotal.WithLabelValues(op, string(r.UnitOfOrigin)).Inc()
	s.log.Info().
		Str("record_id", r.ID).
		Str("op", op).
		Str("unit", string(r.UnitOfOrigin)).
		Str("by", p.Email).
		Msg("record written")

	_, err := s.audit.Append(ctx, ports.AuditInput{
		ActorEmail: p.Email,
		Action:     action,
		Details:    fmt.Sprintf("%s %s (%s, %s)", op, r.ID, r.Type, r.Destination),
		Unit:       r.UnitOfOrigin,
		Category:   domain.CategoryOperational,
	})
	return err
}

func validateRecord(r *domain.Record) error {
	switch {
	case !r.Type.Valid():
		return fmt.Errorf("%w: unknown record type %q", domain.ErrValidation, r.Type)
	case !r.Risk.Valid():
		return fmt.Errorf("%w: unknown risk level %q", domain.ErrValidation, r.Risk)
	case r.Destination == "":
		return fmt.Errorf("%w: destination is required", domain.ErrValidation)
	case r.ScheduledAt.IsZero():
		return fmt.Errorf("%w: scheduled date and time are required", domain.ErrValidation)
	}
	if r.Type != domain.RecordExternalOperation {
		if r.SubjectName == "" {
			return fmt.Errorf("%w: subject name is required", domain.ErrValidation)
		}
		if r.FileNumber == "" {
			return fmt.Errorf("%w: file number is required", domain.ErrValidation)
		}
	}
	return nil
}

func recordIndex(records []domain.Record, id string) int {
	id = strings.ToUpper(strings.TrimSpace(id))
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}
