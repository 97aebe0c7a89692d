// Package session owns the messaging-session lifecycle: an opaque transport
// per session id, QR pairing driven by transport events, and a registry that
// answers "found" and "ready" questions for the HTTP layer.
package session

import "context"

// MediaKind classifies an outbound attachment.
type MediaKind string

const (
	MediaImage    MediaKind = "image"
	MediaDocument MediaKind = "document"
)

// Media is a resolved attachment handed to the transport: a readable file
// on local disk plus enough metadata for the provider to type it.
type Media struct {
	Kind     MediaKind
	Path     string // absolute or working-dir-relative file path
	Filename string // original-style filename shown to the recipient
	MIME     string
}

// Identity is the confirmed account profile exposed by a transport once
// pairing completes. A session is Ready only when this is known.
type Identity struct {
	Number   string
	PushName string
}

// Events carries the lifecycle callbacks a Transport invokes while it
// initializes and runs. All callbacks may be invoked from transport-owned
// goroutines; implementations registered here must be safe for that.
type Events struct {
	// Ready fires once per pairing cycle when the account is authenticated.
	Ready func(Identity)
	// PairingCode fires with a QR/pairing payload to display out-of-band.
	PairingCode func(code string)
	// Error reports asynchronous transport failures.
	Error func(error)
}

// Transport is one connection to the messaging provider. The gateway treats
// it as opaque: it only starts it, sends through it, and closes it.
type Transport interface {
	// Start begins the asynchronous initialization sequence (pairing,
	// reconnect, etc.) and returns once it is launched. Lifecycle progress
	// is reported through ev; a returned error means initialization could
	// not even begin.
	Start(ctx context.Context, ev Events) error

	// SendText delivers a plain text message to a fully qualified address.
	SendText(ctx context.Context, address, body string) error

	// SendMedia delivers one attachment with a caption to a fully qualified
	// address.
	SendMedia(ctx context.Context, address string, m Media, caption string) error

	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// Factory builds a Transport for a session id. The registry calls it once
// per registered session.
type Factory func(sessionID string) Transport
