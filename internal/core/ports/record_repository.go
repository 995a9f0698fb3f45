package ports

import (
	"context"

	"github.com/deppen/custody-registry/internal/core/domain"
)

// RecordRepository persists the whole record collection.
type RecordRepository interface {
	LoadRecords(ctx context.Context) ([]domain.Record, error)
	SaveRecords(ctx context.Context, records []domain.Record) error
}
