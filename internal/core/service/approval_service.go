package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
	"github.com/deppen/custody-registry/internal/pkg/metrics"
)

// ApprovalService lets the master approve or deny pending accounts.
type ApprovalService struct {
	accounts *AccountService
	audit    ports.AuditService
	log      zerolog.Logger
}

// NewApprovalService returns an ApprovalService.
func NewApprovalService(accounts *AccountService, audit ports.AuditService, log zerolog.Logger) *ApprovalService {
	return &ApprovalService{accounts: accounts, audit: audit, log: log}
}

// ListPending returns every account awaiting a decision.
func (s *ApprovalService) ListPending(ctx context.Context, actor domain.Principal) ([]domain.UserAccount, error) {
	if err := authorize(actor, domain.ActionDecideRequest); err != nil {
		return nil, err
	}
	accounts, err := s.accounts.repo.LoadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	out := make([]domain.UserAccount, 0)
	for _, a := range accounts {
		if a.Status == domain.AccountPending {
			out = append(out, a)
		}
	}
	return out, nil
}

// Decide sets the status of email to authorized or denied. Deciding again on
// an already decided account is allowed and overwrites the justification.
// The justification is trimmed and must keep at least
// MinJustificationLength characters.
func (s *ApprovalService) Decide(ctx context.Context, actor domain.Principal, email string, decision ports.Decision, justification string) (*domain.UserAccount, error) {
	if err := authorize(actor, domain.ActionDecideRequest); err != nil {
		return nil, err
	}
	var status domain.AccountStatus
	switch decision {
	case ports.DecisionApprove:
		status = domain.AccountAuthorized
	case ports.DecisionDeny:
		status = domain.AccountDenied
	default:
		return nil, fmt.Errorf("%w: unknown decision %q", domain.ErrValidation, decision)
	}
	justification = strings.TrimSpace(justification)
	if utf8.RuneCountInString(justification) < MinJustificationLength {
		return nil, fmt.Errorf("%w: the justification must have at least %d characters", domain.ErrValidation, MinJustificationLength)
	}
	email = domain.NormalizeEmail(email)

	updated, err := s.accounts.update(ctx, email, func(a *domain.UserAccount) error {
		if a.Role == domain.RoleMaster {
			return fmt.Errorf("%w: master accounts are not subject to approval", domain.ErrAuthorization)
		}
		a.Status = status
		a.Justification = justification
		return nil
	})
	if err != nil {
		return nil, err
	}
	if status == domain.AccountDenied {
		s.accounts.accessRevoked(email)
	}

	verb := "approved"
	if status == domain.AccountDenied {
		verb = "denied"
	}
	if _, err := s.audit.Append(ctx, ports.AuditInput{
		ActorEmail: actor.Email,
		Action:     domain.ActionAccessDecision,
		Details:    fmt.Sprintf("access %s for %s: %s", verb, email, justification),
		Unit:       updated.Unit,
		Category:   domain.CategorySecurity,
	}); err != nil {
		return nil, err
	}

	metrics.AccessDecisionsTotal.WithLabelValues(string(decision)).Inc()
	s.log.Info().Str("email", email).Str("decision", string(decision)).Str("by", actor.Email).Msg("access request decided")
	return updated, nil
}
