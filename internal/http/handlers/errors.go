// Package handlers defines HTTP-layer error codes used by JSON endpoints.
//
// The legacy gateway contract (/clientstatus, /sendmessage) answers in plain
// text and does not use these codes; they apply to the JSON surfaces
// (/sendrecords, NoRoute/NoMethod fallbacks, panic recovery).
package handlers

const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeRateLimited = "too_many_requests"
	ErrCodeInternal    = "internal_error"

	// Domain-specific:
	ErrCodeListFailed       = "list_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
