package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SimTransport is a process-local stand-in for a real messaging provider.
// It pairs itself after a short delay and logs every dispatch instead of
// delivering it. Used for development and as the default boot wiring when no
// real provider is linked in.
type SimTransport struct {
	sessionID string
	pairDelay time.Duration
	log       zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// NewSimFactory returns a Factory producing SimTransports that become Ready
// pairDelay after Start.
func NewSimFactory(pairDelay time.Duration, log zerolog.Logger) Factory {
	return func(sessionID string) Transport {
		return &SimTransport{sessionID: sessionID, pairDelay: pairDelay, log: log}
	}
}

// Start emits a pairing code immediately and reports Ready after the
// configured delay, mimicking a scan completing.
func (t *SimTransport) Start(ctx context.Context, ev Events) error {
	if ev.PairingCode != nil {
		ev.PairingCode("sim-" + uuid.NewString())
	}

	go func() {
		select {
		case <-ctx.Done():
			if ev.Error != nil {
				ev.Error(ctx.Err())
			}
			return
		case <-time.After(t.pairDelay):
		}
		if ev.Ready != nil {
			ev.Ready(Identity{
				Number:   "0000000000",
				PushName: "sim:" + t.sessionID,
			})
		}
	}()
	return nil
}

// SendText logs the dispatch and accepts it.
func (t *SimTransport) SendText(ctx context.Context, address, body string) error {
	if err := t.guard(ctx); err != nil {
		return err
	}
	t.log.Info().
		Str("session_id", t.sessionID).
		Str("address", address).
		Int("body_len", len(body)).
		Msg("sim text send")
	return nil
}

// SendMedia logs the dispatch and accepts it.
func (t *SimTransport) SendMedia(ctx context.Context, address string, m Media, caption string) error {
	if err := t.guard(ctx); err != nil {
		return err
	}
	t.log.Info().
		Str("session_id", t.sessionID).
		Str("address", address).
		Str("kind", string(m.Kind)).
		Str("file", m.Filename).
		Int("caption_len", len(caption)).
		Msg("sim media send")
	return nil
}

// Close marks the transport closed; subsequent sends fail.
func (t *SimTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}

func (t *SimTransport) guard(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return context.Canceled
	}
	return nil
}

// compile-time interface check
var _ Transport = (*SimTransport)(nil)
