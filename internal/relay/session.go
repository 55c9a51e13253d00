package relay

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// SessionState is the lifecycle state of a connection session.
type SessionState int

const (
	// SessionOpen accepts subscriptions and delivers events.
	SessionOpen SessionState = iota
	// SessionClosed is terminal.
	SessionClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionOpen:
		return "open"
	case SessionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Unsubscriber is a releasable subscription handle. Unsubscribe must be idempotent.
type Unsubscriber interface {
	Unsubscribe()
}

// Session tracks the subscriptions owned by one connection, grouped by the
// client's operation id. Closing the session releases all of them before
// Close returns.
type Session struct {
	id     string
	logger *slog.Logger

	mu    sync.Mutex
	state SessionState
	ops   map[string][]Unsubscriber
}

// NewSession creates an open session with a fresh id.
func NewSession() *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		logger: slog.Default().With("sessionID", id),
		state:  SessionOpen,
		ops:    make(map[string][]Unsubscriber),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Attach records sub as owned by operation opID. On a closed session the
// subscription is released immediately and ErrSessionClosed is returned.
func (s *Session) Attach(opID string, sub Unsubscriber) error {
	s.mu.Lock()
	if s.state == SessionClosed {
		s.mu.Unlock()
		sub.Unsubscribe()
		return ErrSessionClosed
	}
	s.ops[opID] = append(s.ops[opID], sub)
	s.mu.Unlock()
	return nil
}

// Detach forgets sub without releasing it. Used once the owner has already
// released the subscription itself.
func (s *Session) Detach(opID string, sub Unsubscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs := s.ops[opID]
	for i, existing := range subs {
		if existing == sub {
			subs = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(s.ops, opID)
		return
	}
	s.ops[opID] = subs
}

// Stop releases every subscription of one operation and returns how many
// were released.
func (s *Session) Stop(opID string) int {
	s.mu.Lock()
	subs := s.ops[opID]
	delete(s.ops, opID)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	return len(subs)
}

// Subscriptions returns the number of live subscriptions owned by the session.
func (s *Session) Subscriptions() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, subs := range s.ops {
		n += len(subs)
	}
	return n
}

// Close moves the session to SessionClosed, releasing every owned
// subscription exactly once before it returns. Calling Close again is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == SessionClosed {
		return
	}

	released := 0
	for opID, subs := range s.ops {
		for _, sub := range subs {
			sub.Unsubscribe()
			released++
		}
		delete(s.ops, opID)
	}
	s.state = SessionClosed
	s.logger.Debug("Session closed", "released", released)
}

type sessionKey struct{}

type sessionScope struct {
	session *Session
	opID    string
}

// WithSession scopes ctx to one operation of session. Subscriptions opened by
// Watch under this context are owned by that operation.
func WithSession(ctx context.Context, session *Session, opID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionScope{session: session, opID: opID})
}

// SessionFromContext returns the session and operation id set by WithSession.
func SessionFromContext(ctx context.Context) (*Session, string, bool) {
	scope, ok := ctx.Value(sessionKey{}).(sessionScope)
	if !ok {
		return nil, "", false
	}
	return scope.session, scope.opID, true
}
