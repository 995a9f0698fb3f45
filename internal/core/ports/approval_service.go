package ports

import (
	"context"

	"github.com/deppen/custody-registry/internal/core/domain"
)

// Decision is the master's verdict on a pending account.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
)

// ApprovalService manages the pending → authorized/denied workflow.
type ApprovalService interface {
	ListPending(ctx context.Context, actor domain.Principal) ([]domain.UserAccount, error)
	Decide(ctx context.Context, actor domain.Principal, email string, decision Decision, justification string) (*domain.UserAccount, error)
}
