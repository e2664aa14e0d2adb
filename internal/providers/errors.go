package providers

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies provider failures so callers can branch on the
// class of failure instead of parsing messages.
type ErrorKind string

const (
	// KindConfiguration: a required key or URL is missing. Rejected
	// synchronously, before any network attempt.
	KindConfiguration ErrorKind = "configuration"
	// KindConnection: a connection test or model fetch failed.
	KindConnection ErrorKind = "connection"
	// KindLoad: a local model failed to initialize.
	KindLoad ErrorKind = "load"
	// KindConcurrency: an operation was rejected because another is in
	// flight. Never queued, never silently dropped.
	KindConcurrency ErrorKind = "concurrency"
	// KindTimeout: the operation exceeded its deadline. Distinct from
	// connection-refused.
	KindTimeout ErrorKind = "timeout"
)

// Error is the typed error returned across the provider boundary.
type Error struct {
	Kind     ErrorKind
	Provider string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigurationError reports missing required configuration.
func NewConfigurationError(provider, message string) *Error {
	return &Error{Kind: KindConfiguration, Provider: provider, Message: message}
}

// NewConnectionError wraps a failed test or fetch. Deadline errors are
// reclassified as timeouts.
func NewConnectionError(provider string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Provider: provider, Message: "request timed out", Err: err}
	}
	return &Error{Kind: KindConnection, Provider: provider, Err: err}
}

// NewLoadError wraps a failed local model initialization.
func NewLoadError(provider, modelID string, err error) *Error {
	return &Error{Kind: KindLoad, Provider: provider, Message: fmt.Sprintf("model %s failed to load: %v", modelID, err), Err: err}
}

// NewAlreadyLoadingError reports that a local load is already in flight.
func NewAlreadyLoadingError(inFlightModelID string) *Error {
	return &Error{Kind: KindConcurrency, Message: fmt.Sprintf("model %s is already loading", inFlightModelID)}
}

// KindOf extracts the error kind, or empty for untyped errors.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
