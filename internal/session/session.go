package session

import (
	"context"
	"errors"
	"sync"
)

// State is the lifecycle position of a session.
type State int

const (
	StateUninitialized State = iota
	StatePairing
	StateReady
	StateFailed
	StateDisconnected
)

// String returns the lowercase name used in logs and status payloads.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StatePairing:
		return "pairing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ErrNotReady is returned when a send is attempted before pairing completed.
var ErrNotReady = errors.New("session not ready")

// Session is one named connection to the messaging transport. State moves
// Uninitialized → Pairing → Ready, or to Failed when initialization dies;
// Ready is entered at most once per pairing cycle. The ready-callback is the
// single writer of identity; reads may race with it and must tolerate
// "not yet present", which the mutex makes explicit.
type Session struct {
	ID string

	mu        sync.RWMutex
	state     State
	identity  *Identity
	transport Transport
}

func newSession(id string, t Transport) *Session {
	return &Session{ID: id, state: StateUninitialized, transport: t}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Ready reports whether pairing has completed and the account identity is
// confirmed.
func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateReady && s.identity != nil
}

// Identity returns the confirmed account profile, or nil before Ready.
func (s *Session) Identity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// SendText dispatches a plain text message through the underlying transport.
// It refuses to send before the session is Ready.
func (s *Session) SendText(ctx context.Context, address, body string) error {
	if !s.Ready() {
		return ErrNotReady
	}
	return s.transport.SendText(ctx, address, body)
}

// SendMedia dispatches one attachment with a caption through the underlying
// transport. It refuses to send before the session is Ready.
func (s *Session) SendMedia(ctx context.Context, address string, m Media, caption string) error {
	if !s.Ready() {
		return ErrNotReady
	}
	return s.transport.SendMedia(ctx, address, m, caption)
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Session) setReady(id Identity) {
	s.mu.Lock()
	s.state = StateReady
	s.identity = &id
	s.mu.Unlock()
}

func (s *Session) close() error {
	s.mu.Lock()
	if s.state != StateFailed {
		s.state = StateDisconnected
	}
	t := s.transport
	s.mu.Unlock()
	if t == nil {
		return nil
	}
	return t.Close()
}
