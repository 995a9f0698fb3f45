package ports

import (
	"context"
	"fmt"

	"github.com/deppen/custody-registry/internal/core/domain"
)

// AuthState is the outcome of a step in the sign-in state machine.
type AuthState string

const (
	AuthRejected           AuthState = "rejected"
	AuthMustChangePassword AuthState = "must_change_password"
	AuthAuthenticated      AuthState = "authenticated"
)

// RejectReason explains a rejected sign-in.
type RejectReason string

const (
	RejectNotFound         RejectReason = "not_found"
	RejectBlocked          RejectReason = "blocked"
	RejectAwaitingApproval RejectReason = "awaiting_approval"
	RejectDenied           RejectReason = "denied"
	RejectBadCredentials   RejectReason = "bad_credentials"
)

// AuthResult is returned by Authenticate and ChangePassword.
type AuthResult struct {
	State         AuthState
	Reason        RejectReason
	Message       string
	Justification string
	Principal     *domain.Principal
	// SessionToken is set when State is AuthAuthenticated.
	SessionToken string
	// ChangeToken is set when State is AuthMustChangePassword and only
	// authorizes the mandatory password change.
	ChangeToken string
}

// Err converts a rejection into the matching error kind, or nil.
func (r *AuthResult) Err() error {
	if r == nil || r.State != AuthRejected {
		return nil
	}
	switch r.Reason {
	case RejectNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, r.Message)
	case RejectBadCredentials:
		return fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, r.Message)
	default:
		return fmt.Errorf("%w: %s", domain.ErrState, r.Message)
	}
}

// AuthService is the authentication gate.
type AuthService interface {
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	ChangePassword(ctx context.Context, email, newPassword, confirm string) (*AuthResult, error)
	RestoreSession(ctx context.Context, token string) (*domain.Principal, error)
	VerifyChangeToken(token string) (string, error)
}
