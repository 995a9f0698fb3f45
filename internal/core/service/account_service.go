package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
)

// AccountService is the account directory. It owns every read-modify-write
// of the account collection; the other services mutate accounts through it.
type AccountService struct {
	repo     ports.AccountRepository
	audit    ports.AuditService
	policy   Policy
	validate *validator.Validate
	now      func() time.Time
	log      zerolog.Logger
	// revoked runs after an account loses the right to sign in.
	revoked func(email string)

	mu sync.Mutex
}

// NewAccountService returns an AccountService.
func NewAccountService(repo ports.AccountRepository, audit ports.AuditService, policy Policy, log zerolog.Logger) *AccountService {
	return &AccountService{
		repo:     repo,
		audit:    audit,
		policy:   policy.withDefaults(),
		validate: validator.New(),
		now:      time.Now,
		log:      log,
	}
}

// OnAccessRevoked registers fn to run after an account is blocked, denied or
// removed. It must be set before the service is used concurrently.
func (s *AccountService) OnAccessRevoked(fn func(email string)) {
	s.revoked = fn
}

func (s *AccountService) accessRevoked(email string) {
	if s.revoked != nil {
		s.revoked(email)
	}
}

// SetupRequired reports whether no account exists yet.
func (s *AccountService) SetupRequired(ctx context.Context) (bool, error) {
	accounts, err := s.repo.LoadAccounts(ctx)
	if err != nil {
		return false, fmt.Errorf("setup required: %w", err)
	}
	return len(accounts) == 0, nil
}

// Bootstrap creates the very first account: an authorized master on the
// temporary credential. It fails with ErrConflict once any account exists.
func (s *AccountService) Bootstrap(ctx context.Context, email, fullName string) (*domain.UserAccount, error) {
	email, err := s.checkEmail(email)
	if err != nil {
		return nil, err
	}
	hash, err := s.policy.hash(s.policy.DefaultCredential)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: hash credential: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.repo.LoadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	if len(accounts) > 0 {
		return nil, fmt.Errorf("%w: the system is already configured", domain.ErrConflict)
	}

	now := s.now().UTC()
	master := domain.UserAccount{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: hash,
		IsTemporary:  true,
		Role:         domain.RoleMaster,
		Unit:         domain.UnitCentral,
		Status:       domain.AccountAuthorized,
		RequestedBy:  domain.SystemActor,
		RequestDate:  now,
	}
	if err := s.repo.SaveAccounts(ctx, []domain.UserAccount{master}); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	if _, err := s.audit.Append(ctx, ports.AuditInput{
		Action:   domain.ActionMasterSetup,
		Details:  fmt.Sprintf("master account configured: %s (temporary credential)", email),
		Unit:     domain.UnitCentral,
		Category: domain.CategorySystem,
	}); err != nil {
		return nil, err
	}

	s.log.Info().Str("email", email).Msg("master account bootstrapped")
	return &master, nil
}

// CreateAccount registers a new account on behalf of creator. Accounts created
// by the master are authorized immediately; any other creator's account
// waits for approval.
func (s *AccountService) CreateAccount(ctx context.Context, creator domain.Principal, in ports.CreateAccountInput) (*domain.UserAccount, error) {
	if err := authorize(creator, domain.ActionCreateAccount); err != nil {
		return nil, err
	}
	email, err := s.checkEmail(in.Email)
	if err != nil {
		return nil, err
	}
	role, unit, err := resolveNewAccountPlacement(creator, in.Role, in.Unit)
	if err != nil {
		return nil, err
	}
	hash, err := s.policy.hash(s.policy.DefaultCredential)
	if err != nil {
		return nil, fmt.Errorf("create account: hash credential: %w", err)
	}

	status := domain.AccountPending
	if creator.Role == domain.RoleMaster {
		status = domain.AccountAuthorized
	}
	account := domain.UserAccount{
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		PasswordHash: hash,
		IsTemporary:  true,
		Role:         role,
		Unit:         unit,
		Status:       status,
		RequestedBy:  creator.Email,
		RequestDate:  s.now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.repo.LoadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	if indexOf(accounts, email) >= 0 {
		return nil, fmt.Errorf("%w: an account for %s already exists", domain.ErrConflict, email)
	}
	accounts = append(accounts, account)
	if err := s.repo.SaveAccounts(ctx, accounts); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	entry := ports.AuditInput{
		ActorEmail: creator.Email,
		Action:     domain.ActionAccountCreated,
		Details:    fmt.Sprintf("account %s created with role %s in %s", email, role, unit),
		Unit:       creator.HomeUnit,
		Category:   domain.CategorySystem,
	}
	if status == domain.AccountPending {
		entry.Action = domain.ActionAccountRequested
		entry.Details = fmt.Sprintf("access requested for %s (role %s, unit %s)", email, role, unit)
	}
	if _, err := s.audit.Append(ctx, entry); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("email", email).
		Str("created_by", creator.Email).
		Str("status", string(status)).
		Msg("account created")
	return &account, nil
}

// FindByEmail looks an account up by its normalized email.
func (s *AccountService) FindByEmail(ctx context.Context, email string) (*domain.UserAccount, error) {
	email = domain.NormalizeEmail(email)
	accounts, err := s.repo.LoadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}
	i := indexOf(accounts, email)
	if i < 0 {
		return nil, fmt.Errorf("%w: no account for %s", domain.ErrNotFound, email)
	}
	account := accounts[i]
	return &account, nil
}

// ListAccounts returns the accounts actor may manage. Unit admins only see
// their own unit.
func (s *AccountService) ListAccounts(ctx context.Context, actor domain.Principal) ([]domain.UserAccount, error) {
	if err := authorize(actor, domain.ActionListAccounts); err != nil {
		return nil, err
	}
	accounts, err := s.repo.LoadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	if actor.Role != domain.RoleUnitAdmin {
		return accounts, nil
	}
	out := make([]domain.UserAccount, 0, len(accounts))
	for _, a := range accounts {
		if a.Unit == actor.HomeUnit {
			out = append(out, a)
		}
	}
	return out, nil
}

// UpdateProfile applies an administrative edit of name, role or unit.
func (s *AccountService) UpdateProfile(ctx context.Context, actor domain.Principal, email string, in ports.UpdateAccountInput) (*domain.UserAccount, error) {
	if err := authorize(actor, domain.ActionEditAccount); err != nil {
		return nil, err
	}
	email = domain.NormalizeEmail(email)

	updated, err := s.update(ctx, email, func(a *domain.UserAccount) error {
		if in.Role != nil && *in.Role != a.Role && email == actor.Email {
			return fmt.Errorf("%w: you cannot change your own role", domain.ErrAuthorization)
		}
		role, unit := a.Role, a.Unit
		if in.Role != nil {
			role = *in.Role
		}
		if in.Unit != nil {
			unit = *in.Unit
		}
		if err := checkPlacement(role, unit); err != nil {
			return err
		}
		a.Role, a.Unit = role, unit
		if in.FullName != nil {
			a.FullName = strings.TrimSpace(*in.FullName)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.audit.Append(ctx, ports.AuditInput{
		ActorEmail: actor.Email,
		Action:     domain.ActionAccountUpdated,
		Details:    fmt.Sprintf("profile of %s updated (role %s, unit %s)", email, updated.Role, updated.Unit),
		Unit:       actor.HomeUnit,
		Category:   domain.CategorySystem,
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

// SetBlocked blocks or unblocks an account without touching its status.
func (s *AccountService) SetBlocked(ctx context.Context, actor domain.Principal, email string, blocked bool) (*domain.UserAccount, error) {
	if err := authorize(actor, domain.ActionBlockAccount); err != nil {
		return nil, err
	}
	email = domain.NormalizeEmail(email)
	if email == actor.Email {
		return nil, fmt.Errorf("%w: you cannot block your own access", domain.ErrAuthorization)
	}

	updated, err := s.update(ctx, email, func(a *domain.UserAccount) error {
		if a.Role == domain.RoleMaster {
			return fmt.Errorf("%w: master accounts cannot be blocked", domain.ErrAuthorization)
		}
		a.IsBlocked = blocked
		return nil
	})
	if err != nil {
		return nil, err
	}
	if blocked {
		s.accessRevoked(email)
	}

	action, verb := domain.ActionAccountUnblocked, "unblocked"
	if blocked {
		action, verb = domain.ActionAccountBlocked, "blocked"
	}
	if _, err := s.audit.Append(ctx, ports.AuditInput{
		ActorEmail: actor.Email,
		Action:     action,
		Details:    fmt.Sprintf("account %s %s", email, verb),
		Unit:       actor.HomeUnit,
		Category:   domain.CategorySecurity,
	}); err != nil {
		return nil, err
	}
	s.log.Info().Str("email", email).Bool("blocked", blocked).Str("by", actor.Email).Msg("account block state changed")
	return updated, nil
}

// RemoveAccount permanently deletes an account. It cannot be undone.
func (s *AccountService) RemoveAccount(ctx context.Context, actor domain.Principal, email string) error {
	if err := authorize(actor, domain.ActionRemoveAccount); err != nil {
		return err
	}
	email = domain.NormalizeEmail(email)
	if email == actor.Email {
		return fmt.Errorf("%w: you cannot remove your own account", domain.ErrAuthorization)
	}

	s.mu.Lock()
	accounts, err := s.repo.LoadAccounts(ctx)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("remove account: %w", err)
	}
	i := indexOf(accounts, email)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: no account for %s", domain.ErrNotFound, email)
	}
	if accounts[i].Role == domain.RoleMaster {
		s.mu.Unlock()
		return fmt.Errorf("%w: master accounts cannot be removed", domain.ErrAuthorization)
	}
	accounts = append(accounts[:i], accounts[i+1:]...)
	err = s.repo.SaveAccounts(ctx, accounts)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("remove account: %w", err)
	}
	s.accessRevoked(email)

	if _, err := s.audit.Append(ctx, ports.AuditInput{
		ActorEmail: actor.Email,
		Action:     domain.ActionAccountRemoved,
		Details:    fmt.Sprintf("account %s removed permanently", email),
		Unit:       actor.HomeUnit,
		Category:   domain.CategorySecurity,
	}); err != nil {
		return err
	}
	s.log.Warn().Str("email", email).Str("by", actor.Email).Msg("account removed")
	return nil
}

// update loads the collection, applies fn to the account identified by the
// already-normalized email and saves the whole collection back.
func (s *AccountService) update(ctx context.Context, email string, fn func(*domain.UserAccount) error) (*domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.repo.LoadAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	i := indexOf(accounts, email)
	if i < 0 {
		return nil, fmt.Errorf("%w: no account for %s", domain.ErrNotFound, email)
	}
	next := accounts[i]
	if err := fn(&next); err != nil {
		return nil, err
	}
	accounts[i] = next
	if err := s.repo.SaveAccounts(ctx, accounts); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return &next, nil
}

// checkEmail normalizes email and enforces syntax and the institutional domain.
func (s *AccountService) checkEmail(raw string) (string, error) {
	email := domain.NormalizeEmail(raw)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: %q is not a valid email address", domain.ErrValidation, raw)
	}
	if d := s.policy.InstitutionalDomain; d != "" && !strings.HasSuffix(email, "@"+strings.ToLower(d)) {
		return "", fmt.Errorf("%w: use an institutional @%s address", domain.ErrValidation, d)
	}
	return email, nil
}

// resolveNewAccountPlacement decides role and unit of an account created by
// creator. The master places accounts freely; a global admin creates
// operators in any operational unit; a unit admin creates operators in its
// own unit only.
func resolveNewAccountPlacement(creator domain.Principal, role domain.Role, unit domain.Unit) (domain.Role, domain.Unit, error) {
	if creator.Role != domain.RoleMaster {
		if role == "" {
			role = domain.RoleOperator
		}
		if role != domain.RoleOperator {
			return "", "", fmt.Errorf("%w: only the master may create %s accounts", domain.ErrAuthorization, role)
		}
		if creator.Role == domain.RoleUnitAdmin {
			if unit != "" && unit != creator.HomeUnit {
				return "", "", fmt.Errorf("%w: unit admins may only create accounts in %s", domain.ErrAuthorization, creator.HomeUnit)
			}
			unit = creator.HomeUnit
		}
	}
	if err := checkPlacement(role, unit); err != nil {
		return "", "", err
	}
	return role, unit, nil
}

// checkPlacement enforces that the central unit holds exactly the
// top-level roles.
func checkPlacement(role domain.Role, unit domain.Unit) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role)
	}
	if !unit.Valid() {
		return fmt.Errorf("%w: unknown unit %q", domain.ErrValidation, unit)
	}
	if role.IsTopLevel() != (unit == domain.UnitCentral) {
		return fmt.Errorf("%w: the %s unit is reserved for master and global admin accounts", domain.ErrValidation, domain.UnitCentral)
	}
	return nil
}

func indexOf(accounts []domain.UserAccount, email string) int {
	for i := range accounts {
		if accounts[i].Email == email {
			return i
		}
	}
	return -1
}
