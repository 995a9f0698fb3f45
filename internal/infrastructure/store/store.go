// Package store persists the custody registry collections as JSON blobs over
// a key/value backend. Each collection is written whole on every save.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/pkg/metrics"
)

// Collection keys.
const (
	KeyAccounts = "custody:accounts"
	KeyRecords  = "custody:records"
	KeyAudit    = "custody:audit"
)

// BlobStore is the minimal key/value contract every backend implements.
// Get reports found=false, with a nil error, for a key that was never set.
type BlobStore interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Set(ctx context.Context, key string, data []byte) error
	Ping(ctx context.Context) error
}

// Repository implements the account, record and audit repositories on top of
// a BlobStore.
type Repository struct {
	blobs  BlobStore
	driver string
}

// NewRepository returns a Repository. driver labels storage metrics.
func NewRepository(blobs BlobStore, driver string) *Repository {
	return &Repository{blobs: blobs, driver: driver}
}

// Ping checks the backend.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.blobs.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s ping: %v", domain.ErrStorage, r.driver, err)
	}
	return nil
}

func (r *Repository) LoadAccounts(ctx context.Context) ([]domain.UserAccount, error) {
	var out []domain.UserAccount
	if err := r.load(ctx, KeyAccounts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) SaveAccounts(ctx context.Context, accounts []domain.UserAccount) error {
	return r.save(ctx, KeyAccounts, nonNil(accounts))
}

func (r *Repository) LoadRecords(ctx context.Context) ([]domain.Record, error) {
	var out []domain.Record
	if err := r.load(ctx, KeyRecords, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) SaveRecords(ctx context.Context, records []domain.Record) error {
	return r.save(ctx, KeyRecords, nonNil(records))
}

func (r *Repository) LoadAuditTrail(ctx context.Context) ([]domain.AuditLogEntry, error) {
	var out []domain.AuditLogEntry
	if err := r.load(ctx, KeyAudit, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) SaveAuditTrail(ctx context.Context, entries []domain.AuditLogEntry) error {
	return r.save(ctx, KeyAudit, nonNil(entries))
}

// load decodes key into dst. A missing key leaves dst untouched; any backend
// or decode failure is a storage error, never an empty collection.
func (r *Repository) load(ctx context.Context, key string, dst any) error {
	start := time.Now()
	data, found, err := r.blobs.Get(ctx, key)
	metrics.StorageOperationDuration.WithLabelValues(r.driver, "get").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", domain.ErrStorage, key, err)
	}
	if !found || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrStorage, key, err)
	}
	return nil
}

func (r *Repository) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrStorage, key, err)
	}
	start := time.Now()
	err = r.blobs.Set(ctx, key, data)
	metrics.StorageOperationDuration.WithLabelValues(r.driver, "set").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorage, key, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
