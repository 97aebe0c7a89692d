// Package services implements the business logic of the gateway, centered on
// the send orchestrator. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer; mapping
// to HTTP statuses happens at the handler layer.
package services

import "errors"

var (
	// ErrSessionNotFound indicates that no usable session exists for the
	// requested session id: either it was never registered or it has not
	// completed pairing. The HTTP layer maps this to 404, matching the
	// gateway's historical behavior of only exposing ready sessions to the
	// send path.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyRecipient is returned when the send request carries no
	// recipient identifier.
	ErrEmptyRecipient = errors.New("recipient is empty")

	// ErrLookupFailed is returned when the recipient-name read fails at the
	// store; the send is aborted before anything is dispatched.
	ErrLookupFailed = errors.New("recipient name lookup failed")

	// ErrAttachmentMissing is returned when a referenced upload cannot be
	// resolved on disk; the send is aborted before the transport is called.
	ErrAttachmentMissing = errors.New("attachment not resolvable")

	// ErrDispatchFailed is returned when the transport rejects or errors
	// during the send. When several media sends were in flight, the whole
	// operation reports failed even if a sibling send went through; nothing
	// is compensated or retried.
	ErrDispatchFailed = errors.New("message dispatch failed")

	// ErrRecordLost is returned when the message was accepted by the
	// transport but the audit row could not be written. The message WAS
	// delivered; the caller is still told "failure". This inconsistency is
	// deliberate and preserved (see DESIGN.md).
	ErrRecordLost = errors.New("message sent but send record not persisted")
)
