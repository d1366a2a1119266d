// Package apperr defines the closed set of error kinds the system surfaces
// across REST, WebSocket, and internal collaborator boundaries.
//
// Infrastructure errors (network blips, provider hiccups) are absorbed in
// background loops with structured logging; only these typed errors cross
// a user-facing boundary, each carrying a stable error_code for the REST
// error body ({error_code, message, details?}).
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies one of the closed set of error categories.
type Kind string

const (
	// KindInvalidInput is a validation failure, never retried.
	KindInvalidInput Kind = "invalid_input"
	// KindNotFound is a missing id, never retried.
	KindNotFound Kind = "not_found"
	// KindUpstreamUnavailable is a transient provider failure surfaced only
	// after retries are exhausted.
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	// KindRateLimited comes from a provider; triggers poller backoff and is
	// not surfaced to end users unless the request was synchronous.
	KindRateLimited Kind = "rate_limited"
	// KindUnknownSymbol is a symbol the exchange adapter cannot resolve.
	KindUnknownSymbol Kind = "unknown_symbol"
	// KindInsufficientBalance means the trading collaborator rejected an
	// order because the account cannot cover it.
	KindInsufficientBalance Kind = "insufficient_balance"
	// KindSynthesisUnavailable means every TTS provider failed; the client
	// falls back to a local speech synthesizer.
	KindSynthesisUnavailable Kind = "synthesis_unavailable"
	// KindEmptyAfterSanitize means TTS text cleaning left nothing to speak.
	KindEmptyAfterSanitize Kind = "empty_after_sanitize"
	// KindSessionLagging means a WebSocket session's outbound buffer
	// overflowed; the session is closed.
	KindSessionLagging Kind = "session_lagging"
	// KindInternal is an unexpected error, logged with context and surfaced
	// to REST callers as 500.
	KindInternal Kind = "internal"
)

// Error is the typed error carried across component boundaries.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause, if any, for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// ErrorCode returns the stable machine-readable code for REST error bodies.
func (e *Error) ErrorCode() string {
	return string(e.Kind)
}

// New builds an Error of the given kind with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithDetails attaches structured details and returns the receiver for chaining.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// Is reports whether err is an *Error of kind k.
func Is(err error, k Kind) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind == k
	}
	return false
}

// KindOf extracts the Kind of err, defaulting to KindInternal when err is
// not a typed *Error.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}
