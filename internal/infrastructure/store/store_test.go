package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deppen/custody-registry/internal/core/domain"
)

type failingStore struct {
	err error
}

func (f failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, f.err
}

func (f failingStore) Set(context.Context, string, []byte) error {
	return f.err
}

func (f failingStore) Ping(context.Context) error {
	return f.err
}

func TestRepository_MissingKeyIsEmpty(t *testing.T) {
	repo := NewRepository(NewMemoryStore(), "memory")
	ctx := context.Background()

	accounts, err := repo.LoadAccounts(ctx)
	require.NoError(t, err)
	require.Empty(t, accounts)

	records, err := repo.LoadRecords(ctx)
	require.NoError(t, err)
	require.Empty(t, records)

	trail, err := repo.LoadAuditTrail(ctx)
	require.NoError(t, err)
	require.Empty(t, trail)
}

func TestRepository_RoundTrip(t *testing.T) {
	repo := NewRepository(NewMemoryStore(), "memory")
	ctx := context.Background()
	done := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	in := []domain.Record{{
		ID:           "PRT-0A1B2C",
		Type:         domain.RecordInternment,
		SubjectName:  "Fulano",
		FileNumber:   "123",
		Destination:  "Hospital",
		ScheduledAt:  done.Add(-time.Hour),
		Risk:         domain.RiskHigh,
		Status:       domain.RecordCompleted,
		UnitOfOrigin: domain.UnitPrisonEscort,
		CompletedAt:  &done,
	}}
	require.NoError(t, repo.SaveRecords(ctx, in))

	out, err := repo.LoadRecords(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, in[0].ID, out[0].ID)
	require.Equal(t, domain.UnitPrisonEscort, out[0].UnitOfOrigin)
	require.NotNil(t, out[0].CompletedAt)
	require.True(t, out[0].CompletedAt.Equal(done))
}

func TestRepository_SaveEmptyCollection(t *testing.T) {
	blobs := NewMemoryStore()
	repo := NewRepository(blobs, "memory")
	ctx := context.Background()

	require.NoError(t, repo.SaveAccounts(ctx, nil))
	data, found, err := blobs.Get(ctx, KeyAccounts)
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, "[]", string(data))
}

func TestRepository_BackendFailure(t *testing.T) {
	boom := errors.New("connection refused")
	repo := NewRepository(failingStore{err: boom}, "memory")
	ctx := context.Background()

	_, err := repo.LoadAccounts(ctx)
	require.ErrorIs(t, err, domain.ErrStorage)

	err = repo.SaveAuditTrail(ctx, []domain.AuditLogEntry{{ID: "x"}})
	require.ErrorIs(t, err, domain.ErrStorage)

	require.ErrorIs(t, repo.Ping(ctx), domain.ErrStorage)
}

func TestRepository_CorruptBlob(t *testing.T) {
	blobs := NewMemoryStore()
	require.NoError(t, blobs.Set(context.Background(), KeyAudit, []byte("{not json")))

	_, err := NewRepository(blobs, "memory").LoadAuditTrail(context.Background())
	require.ErrorIs(t, err, domain.ErrStorage)
}
