package ports

import (
	"context"

	"github.com/deppen/custody-registry/internal/core/domain"
)

// AccountRepository persists the whole account collection. Implementations
// must return a domain.ErrStorage-wrapped error on backend failure and an
// empty slice only when nothing was ever saved.
type AccountRepository interface {
	LoadAccounts(ctx context.Context) ([]domain.UserAccount, error)
	SaveAccounts(ctx context.Context, accounts []domain.UserAccount) error
}
