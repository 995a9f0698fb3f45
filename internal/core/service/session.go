package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppen/custody-registry/internal/core/domain"
)

// SessionRegistry ties one heartbeat task to each signed-in session. A task
// ends on Close, on CloseAccount, when no request touched the session within
// the idle window, when its lifetime elapses, when the account loses access,
// or on CloseAll at shutdown.
type SessionRegistry struct {
	presence *PresenceService
	lifetime time.Duration
	idle     time.Duration
	now      func() time.Time
	log      zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	email      string
	task       *HeartbeatTask
	lastActive time.Time
}

// NewSessionRegistry returns a registry whose tasks live at most lifetime,
// normally the session token TTL, and end after the presence online window
// passes without activity.
func NewSessionRegistry(presence *PresenceService, lifetime time.Duration, log zerolog.Logger) *SessionRegistry {
	return &SessionRegistry{
		presence: presence,
		lifetime: lifetime,
		idle:     presence.Window(),
		now:      time.Now,
		log:      log,
		sessions: make(map[string]*session),
	}
}

// sessionKey falls back to the email for principals without a session id.
func sessionKey(p domain.Principal) string {
	if p.SessionID != "" {
		return p.SessionID
	}
	return p.Email
}

// Open starts the heartbeat for the session of p, replacing any task already
// running for the same session.
func (r *SessionRegistry) Open(p domain.Principal) {
	key := sessionKey(p)
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if r.lifetime > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), r.lifetime)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	r.mu.Lock()
	prev := r.sessions[key]
	s := &session{email: p.Email, lastActive: r.now()}
	s.task = r.presence.Start(ctx, p.Email, func() bool { return r.fresh(s) })
	r.sessions[key] = s
	r.mu.Unlock()

	go func() {
		<-s.task.Done()
		cancel()
		r.mu.Lock()
		if r.sessions[key] == s {
			delete(r.sessions, key)
		}
		r.mu.Unlock()
	}()

	if prev != nil {
		prev.task.Stop()
	}
	r.log.Debug().Str("email", p.Email).Str("session", key).Msg("session opened")
}

// Touch records client activity on the session of p. Unknown sessions are
// ignored.
func (r *SessionRegistry) Touch(p domain.Principal) {
	r.mu.Lock()
	if s, ok := r.sessions[sessionKey(p)]; ok {
		s.lastActive = r.now()
	}
	r.mu.Unlock()
}

func (r *SessionRegistry) fresh(s *session) bool {
	if r.idle <= 0 {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.now().Sub(s.lastActive) <= r.idle
}

// Active reports whether a heartbeat task is running for the session of p.
func (r *SessionRegistry) Active(p domain.Principal) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[sessionKey(p)]
	return ok
}

// Close stops the heartbeat of the session of p, if any. Other sessions of
// the same account keep running.
func (r *SessionRegistry) Close(p domain.Principal) {
	key := sessionKey(p)
	r.mu.Lock()
	s := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()

	if s != nil {
		s.task.Stop()
		r.log.Debug().Str("email", s.email).Str("session", key).Msg("session closed")
	}
}

// CloseAccount stops every session of email. It runs when the account is
// blocked, denied or removed.
func (r *SessionRegistry) CloseAccount(email string) {
	email = domain.NormalizeEmail(email)
	r.mu.Lock()
	var tasks []*HeartbeatTask
	for key, s := range r.sessions {
		if s.email == email {
			tasks = append(tasks, s.task)
			delete(r.sessions, key)
		}
	}
	r.mu.Unlock()

	for _, t := range tasks {
		t.Stop()
	}
	if len(tasks) > 0 {
		r.log.Info().Str("email", email).Int("sessions", len(tasks)).Msg("sessions closed after access change")
	}
}

// CloseAll stops every heartbeat and waits for them to exit.
func (r *SessionRegistry) CloseAll() {
	r.mu.Lock()
	tasks := make([]*HeartbeatTask, 0, len(r.sessions))
	for key, s := range r.sessions {
		tasks = append(tasks, s.task)
		delete(r.sessions, key)
	}
	r.mu.Unlock()

	for _, t := range tasks {
		t.Stop()
	}
}
