package ports

import (
	"context"

	"github.com/deppen/custody-registry/internal/core/domain"
)

// CreateAccountInput carries the fields an administrator supplies for a new
// account. The secret is never supplied: every account starts on the shared
// temporary credential.
type CreateAccountInput struct {
	Email    string
	FullName string
	Role     domain.Role
	Unit     domain.Unit
}

// UpdateAccountInput carries an administrative profile edit. Nil fields are
// left untouched.
type UpdateAccountInput struct {
	FullName *string
	Role     *domain.Role
	Unit     *domain.Unit
}

// AccountService is the account directory.
type AccountService interface {
	SetupRequired(ctx context.Context) (bool, error)
	Bootstrap(ctx context.Context, email, fullName string) (*domain.UserAccount, error)
	CreateAccount(ctx context.Context, creator domain.Principal, in CreateAccountInput) (*domain.UserAccount, error)
	FindByEmail(ctx context.Context, email string) (*domain.UserAccount, error)
	ListAccounts(ctx context.Context, actor domain.Principal) ([]domain.UserAccount, error)
	UpdateProfile(ctx context.Context, actor domain.Principal, email string, in UpdateAccountInput) (*domain.UserAccount, error)
	SetBlocked(ctx context.Context, actor domain.Principal, email string, blocked bool) (*domain.UserAccount, error)
	RemoveAccount(ctx context.Context, actor domain.Principal, email string) error
}
