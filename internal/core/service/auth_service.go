package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
	"github.com/deppen/custody-registry/internal/pkg/metrics"
)

// AuthService drives sign-in and the mandatory password change.
type AuthService struct {
	accounts *AccountService
	audit    ports.AuditService
	tokens   *TokenIssuer
	policy   Policy
	// auditFailures also records rejected sign-ins as security entries.
	auditFailures bool
	now           func() time.Time
	log           zerolog.Logger
}

// NewAuthService returns an AuthService backed by the account directory.
func NewAuthService(accounts *AccountService, audit ports.AuditService, tokens *TokenIssuer, auditFailures bool, log zerolog.Logger) *AuthService {
	return &AuthService{
		accounts:      accounts,
		audit:         audit,
		tokens:        tokens,
		policy:        accounts.policy,
		auditFailures: auditFailures,
		now:           time.Now,
		log:           log,
	}
}

// Authenticate validates credentials. Rejections are reported in the result,
// not as errors; the error return is reserved for storage failures.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return s.reject(ctx, email, "", ports.RejectNotFound, "no account is registered for this email", "")
		}
		return nil, err
	}

	switch {
	case account.IsBlocked:
		return s.reject(ctx, email, account.Unit, ports.RejectBlocked, "access blocked by the administration", "")
	case account.Status == domain.AccountPending:
		return s.reject(ctx, email, account.Unit, ports.RejectAwaitingApproval, "your access is awaiting approval by the master administrator", "")
	case account.Status == domain.AccountDenied:
		reason := account.Justification
		if reason == "" {
			reason = "not informed"
		}
		return s.reject(ctx, email, account.Unit, ports.RejectDenied, "access denied. Reason: "+reason, account.Justification)
	case !verifySecret(account.PasswordHash, password):
		return s.reject(ctx, email, account.Unit, ports.RejectBadCredentials, "incorrect password", "")
	}

	if account.IsTemporary {
		token, err := s.tokens.Issue(email, PurposePasswordChange)
		if err != nil {
			return nil, fmt.Errorf("authenticate: issue change token: %w", err)
		}
		metrics.AuthAttemptsTotal.WithLabelValues(string(ports.AuthMustChangePassword)).Inc()
		return &ports.AuthResult{
			State:       ports.AuthMustChangePassword,
			Message:     "your password is temporary and must be changed",
			ChangeToken: token,
		}, nil
	}

	account, err = s.accounts.update(ctx, email, func(a *domain.UserAccount) error {
		a.LastSeen = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.audit.Append(ctx, ports.AuditInput{
		ActorEmail: email,
		Action:     domain.ActionLogin,
		Details:    "signed in: " + email,
		Unit:       account.Unit,
		Category:   domain.CategorySecurity,
	}); err != nil {
		return nil, err
	}
	return s.authenticated(account)
}

// ChangePassword replaces the temporary secret of email and opens a session.
// Only accounts still on the temporary credential may change it here, so a
// change token cannot be replayed once used.
func (s *AuthService) ChangePassword(ctx context.Context, email, newPassword, confirm string) (*ports.AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if err := s.checkNewPassword(newPassword, confirm); err != nil {
		metrics.PasswordChangesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	hash, err := s.policy.hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("change password: hash: %w", err)
	}

	account, err := s.accounts.update(ctx, email, func(a *domain.UserAccount) error {
		if !a.CanSignIn() {
			return fmt.Errorf("%w: account %s is not allowed to sign in", domain.ErrState, email)
		}
		if !a.IsTemporary {
			return fmt.Errorf("%w: the password of %s was already changed", domain.ErrState, email)
		}
		a.PasswordHash = hash
		a.IsTemporary = false
		a.LastSeen = s.now().UTC()
		return nil
	})
	if err != nil {
		metrics.PasswordChangesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	if _, err := s.audit.Append(ctx, ports.AuditInput{
		ActorEmail: email,
		Action:     domain.ActionPasswordChanged,
		Details:    "password changed for " + email,
		Unit:       account.Unit,
		Category:   domain.CategorySecurity,
	}); err != nil {
		return nil, err
	}
	metrics.PasswordChangesTotal.WithLabelValues("ok").Inc()
	s.log.Info().Str("email", email).Msg("password changed")
	return s.authenticated(account)
}

// RestoreSession revalidates a previously issued session token against the
// current account state. Any mismatch yields ErrSessionInvalid.
func (s *AuthService) RestoreSession(ctx context.Context, token string) (*domain.Principal, error) {
	claims, err := s.tokens.verify(token, PurposeSession)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionInvalid, err)
	}
	email := claims.Subject
	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", domain.ErrSessionInvalid)
		}
		return nil, err
	}
	if !account.CanSignIn() || account.IsTemporary {
		s.log.Debug().Str("email", email).Msg("session invalidated by account state")
		return nil, fmt.Errorf("%w: account is blocked or not authorized", domain.ErrSessionInvalid)
	}
	p := account.Principal()
	p.SessionID = claims.ID
	return &p, nil
}

// VerifyChangeToken returns the email named by a password-change token.
func (s *AuthService) VerifyChangeToken(token string) (string, error) {
	email, err := s.tokens.Parse(token, PurposePasswordChange)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSessionInvalid, err)
	}
	return email, nil
}

func (s *AuthService) checkNewPassword(newPassword, confirm string) error {
	switch {
	case newPassword != confirm:
		return fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
	case utf8.RuneCountInString(newPassword) < s.policy.MinPasswordLength:
		return fmt.Errorf("%w: the new password must have at least %d characters", domain.ErrValidation, s.policy.MinPasswordLength)
	case newPassword == s.policy.DefaultCredential:
		return fmt.Errorf("%w: the new password cannot be the temporary credential", domain.ErrValidation)
	}
	return nil
}

func (s *AuthService) authenticated(account *domain.UserAccount) (*ports.AuthResult, error) {
	token, id, err := s.tokens.issue(account.Email, PurposeSession)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}
	p := account.Principal()
	p.SessionID = id
	metrics.AuthAttemptsTotal.WithLabelValues(string(ports.AuthAuthenticated)).Inc()
	return &ports.AuthResult{
		State:        ports.AuthAuthenticated,
		Principal:    &p,
		SessionToken: token,
	}, nil
}

func (s *AuthService) reject(ctx context.Context, email string, unit domain.Unit, reason ports.RejectReason, msg, justification string) (*ports.AuthResult, error) {
	metrics.AuthAttemptsTotal.WithLabelValues(string(reason)).Inc()
	s.log.Info().Str("email", email).Str("reason", string(reason)).Msg("sign-in rejected")

	if s.auditFailures {
		if _, err := s.audit.Append(ctx, ports.AuditInput{
			ActorEmail: email,
			Action:     domain.ActionLoginFailed,
			Details:    fmt.Sprintf("sign-in rejected for %s: %s", email, reason),
			Unit:       unit,
			Category:   domain.CategorySecurity,
		}); err != nil {
			return nil, err
		}
	}
	return &ports.AuthResult{
		State:         ports.AuthRejected,
		Reason:        reason,
		Message:       msg,
		Justification: justification,
	}, nil
}
