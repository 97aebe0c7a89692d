package session

import (
	"context"

	"sync"

	"github.com/rs/zerolog"
)

// Registry holds all named sessions for the process. It is the only owner of
// the id → session map; sessions are created on demand (or at boot) and torn
// down only at shutdown. Safe for concurrent use.
type Registry struct {
	factory Factory
	log     zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry builds an empty registry that uses factory to construct a
// transport per session id.
func NewRegistry(factory Factory, log zerolog.Logger) *Registry {
	return &Registry{
		factory:  factory,
		log:      log,
		sessions: make(map[string]*Session),
	}
}

// CreateSession registers sessionID and launches its asynchronous
// initialization; it does not block on pairing. Calling it again with an id
// that is already registered returns the existing session without spinning
// up a second transport, keeping "at most one session per id" intact.
//
// Lifecycle wiring:
//   - the pairing callback moves the session to Pairing and logs the code
//     for out-of-band display (the operator scans it);
//   - the ready callback moves the session to Ready exactly once per pairing
//     cycle and records the confirmed identity;
//   - the error callback logs and leaves the session in its last-known state
//     unless initialization never completed, in which case it is marked
//     Failed and stays unusable (no retry).
func (r *Registry) CreateSession(ctx context.Context, sessionID string) *Session {
	r.mu.Lock()
	if existing, ok := r.sessions[sessionID]; ok {
		r.mu.Unlock()
		return existing
	}
	sess := newSession(sessionID, r.factory(sessionID))
	r.sessions[sessionID] = sess
	r.mu.Unlock()

	lg := r.log.With().Str("session_id", sessionID).Logger()

	ev := Events{
		PairingCode: func(code string) {
			sess.setState(StatePairing)
			lg.Info().Str("pairing_code", code).Msg("scan pairing code")
		},
		Ready: func(id Identity) {
			sess.setReady(id)
			lg.Info().Str("number", id.Number).Str("push_name", id.PushName).Msg("session ready")
		},
		Error: func(err error) {
			if sess.Ready() {
				lg.Error().Err(err).Msg("session error")
				return
			}
			sess.setState(StateFailed)
			lg.Error().Err(err).Msg("session initialization failed")
		},
	}

	go func() {
		if err := sess.transport.Start(ctx, ev); err != nil {
			sess.setState(StateFailed)
			lg.Error().Err(err).Msg("session initialization failed")
		}
	}()

	return sess
}

// Get returns the session registered under sessionID, if any.
func (r *Registry) Get(sessionID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

// Status reports existence and readiness for sessionID. "Not found" and
// "not ready" are distinct conditions: the HTTP layer maps the former to 404
// and the latter to a false readiness flag.
func (r *Registry) Status(sessionID string) (found, ready bool) {
	s, ok := r.Get(sessionID)
	if !ok {
		return false, false
	}
	return true, s.Ready()
}

// Shutdown closes every session's transport. Called once at process exit.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.Unlock()

	for _, s := range sessions {
		if err := s.close(); err != nil {
			r.log.Warn().Err(err).Str("session_id", s.ID).Msg("transport close")
		}
	}
}
