package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppen/custody-registry/internal/core/domain"
	"github.com/deppen/custody-registry/internal/core/ports"
	"github.com/deppen/custody-registry/internal/pkg/metrics"
)

const (
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultOnlineWindow      = 5 * time.Minute
)

// PresenceService records liveness heartbeats and derives who is online.
// Heartbeats are not audited.
type PresenceService struct {
	accounts *AccountService
	interval time.Duration
	window   time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewPresenceService returns a PresenceService. Non-positive durations fall
// back to the defaults.
func NewPresenceService(accounts *AccountService, interval, window time.Duration, log zerolog.Logger) *PresenceService {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	if window <= 0 {
		window = DefaultOnlineWindow
	}
	return &PresenceService{accounts: accounts, interval: interval, window: window, now: time.Now, log: log}
}

// Heartbeat sets the last-seen time of email to now. Accounts that may no
// longer sign in are refused with ErrSessionInvalid.
func (s *PresenceService) Heartbeat(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	_, err := s.accounts.update(ctx, email, func(a *domain.UserAccount) error {
		if !a.CanSignIn() {
			return fmt.Errorf("%w: account %s is blocked or not authorized", domain.ErrSessionInvalid, email)
		}
		a.LastSeen = s.now().UTC()
		return nil
	})
	if err != nil {
		return err
	}
	metrics.HeartbeatsTotal.Inc()
	return nil
}

// IsOnline reports whether lastSeen falls within window of now.
func IsOnline(lastSeen, now time.Time, window time.Duration) bool {
	if lastSeen.IsZero() {
		return false
	}
	return now.Sub(lastSeen) <= window
}

// Roster lists every account with its derived online flag, online accounts
// first. Accounts that may not sign in are never online.
func (s *PresenceService) Roster(ctx context.Context, actor domain.Principal) ([]ports.PresenceEntry, error) {
	if err := authorize(actor, domain.ActionViewPresence); err != nil {
		return nil, err
	}
	accounts, err := s.accounts.repo.LoadAccounts(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]ports.PresenceEntry, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, ports.PresenceEntry{
			Email:    a.Email,
			FullName: a.FullName,
			Role:     a.Role,
			Unit:     a.Unit,
			LastSeen: a.LastSeen,
			Online:   a.CanSignIn() && IsOnline(a.LastSeen, now, s.window),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Online && !out[j].Online
	})
	return out, nil
}

// HeartbeatTask beats periodically for one account until stopped.
type HeartbeatTask struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the task and waits for its goroutine to exit. It is safe to
// call more than once.
func (t *HeartbeatTask) Stop() {
	t.once.Do(t.cancel)
	<-t.done
}

// Done is closed once the task has exited.
func (t *HeartbeatTask) Done() <-chan struct{} {
	return t.done
}

// Start beats for email immediately and then on every interval until ctx is
// cancelled or Stop is called. Before each beat it consults keep, when not
// nil, and exits once keep reports false. It also exits when the account is
// gone or may no longer sign in. Other failures are logged and retried on
// the next tick.
func (s *PresenceService) Start(ctx context.Context, email string, keep func() bool) *HeartbeatTask {
	ctx, cancel := context.WithCancel(ctx)
	t := &HeartbeatTask{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			if keep != nil && !keep() {
				s.log.Debug().Str("email", email).Msg("heartbeat ended: session idle")
				return
			}
			if !s.beat(ctx, email) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return t
}

// beat reports whether the task should keep running.
func (s *PresenceService) beat(ctx context.Context, email string) bool {
	err := s.Heartbeat(ctx, email)
	switch {
	case err == nil:
		return true
	case ctx.Err() != nil:
		return false
	case errors.Is(err, domain.ErrSessionInvalid), errors.Is(err, domain.ErrNotFound):
		s.log.Info().Err(err).Str("email", email).Msg("heartbeat ended: account lost access")
		return false
	}
	s.log.Warn().Err(err).Str("email", email).Msg("heartbeat failed")
	return true
}

// Window is the period within which a heartbeat counts as online.
func (s *PresenceService) Window() time.Duration {
	return s.window
}
