package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
)

const testDomain = "policiapenal.pr.gov.br"

// memStore implements the three repositories in memory. Every read and
// write copies, so services never share backing arrays with the store.
type memStore struct {
	mu       sync.Mutex
	accounts []domain.UserAccount
	records  []domain.Record
	trail    []domain.AuditLogEntry
	// fail, when set, is returned by every operation.
	fail error
}

func (m *memStore) LoadAccounts(_ context.Context) ([]domain.UserAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return append([]domain.UserAccount(nil), m.accounts...), nil
}

func (m *memStore) SaveAccounts(_ context.Context, accounts []domain.UserAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.accounts = append([]domain.UserAccount(nil), accounts...)
	return nil
}

func (m *memStore) LoadRecords(_ context.Context) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return append([]domain.Record(nil), m.records...), nil
}

func (m *memStore) SaveRecords(_ context.Context, records []domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.records = append([]domain.Record(nil), records...)
	return nil
}

func (m *memStore) LoadAuditTrail(_ context.Context) ([]domain.AuditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	return append([]domain.AuditLogEntry(nil), m.trail...), nil
}

func (m *memStore) SaveAuditTrail(_ context.Context, entries []domain.AuditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.trail = append([]domain.AuditLogEntry(nil), entries...)
	return nil
}

func (m *memStore) trailLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.trail)
}

func (m *memStore) lastEntry() domain.AuditLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.trail) == 0 {
		return domain.AuditLogEntry{}
	}
	return m.trail[0]
}

func (m *memStore) setFail(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

type harness struct {
	store     *memStore
	audit     *AuditService
	accounts  *AccountService
	auth      *AuthService
	approvals *ApprovalService
	records   *RecordService
	presence  *PresenceService
	backup    *BackupService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zerolog.Nop()
	store := &memStore{}
	audit := NewAuditService(store, 0, log)
	accounts := NewAccountService(store, audit, Policy{
		InstitutionalDomain: testDomain,
		BcryptCost:          bcrypt.MinCost,
	}, log)
	return &harness{
		store:     store,
		audit:     audit,
		accounts:  accounts,
		auth:      NewAuthService(accounts, audit, NewTokenIssuer("test-secret", time.Hour), false, log),
		approvals: NewApprovalService(accounts, audit, log),
		records:   NewRecordService(store, store, audit, log),
		presence:  NewPresenceService(accounts, 10*time.Millisecond, 0, log),
		backup:    NewBackupService(store, store, store, audit, log),
	}
}

func mail(local string) string {
	return local + "@" + testDomain
}

// master bootstraps the system and returns the master principal.
func (h *harness) master(t *testing.T) domain.Principal {
	t.Helper()
	acc, err := h.accounts.Bootstrap(context.Background(), mail("master"), "Master")
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	return acc.Principal()
}

// account creates an authorized account through the master.
func (h *harness) account(t *testing.T, master domain.Principal, local string, role domain.Role, unit domain.Unit) domain.Principal {
	t.Helper()
	acc, err := h.accounts.CreateAccount(context.Background(), master, ports.CreateAccountInput{
		Email:    mail(local),
		FullName: local,
		Role:     role,
		Unit:     unit,
	})
	if err != nil {
		t.Fatalf("CreateAccount(%s) returned error: %v", local, err)
	}
	return acc.Principal()
}

// activate moves an account off its temporary credential.
func (h *harness) activate(t *testing.T, addr, password string) {
	t.Helper()
	res, err := h.auth.ChangePassword(context.Background(), addr, password, password)
	if err != nil {
		t.Fatalf("ChangePassword(%s) returned error: %v", addr, err)
	}
	if res.State != ports.AuthAuthenticated {
		t.Fatalf("expected authenticated after change, got %s", res.State)
	}
}
