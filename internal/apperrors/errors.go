package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// Kind is the machine-readable failure category surfaced to callers
type Kind string

const (
	// KindInvalidInput is a malformed request. Never retried.
	KindInvalidInput Kind = "InvalidInput"
	// KindNotFound is a reference to a meeting or user that does not exist. Never retried.
	KindNotFound Kind = "NotFound"
	// KindUpstreamUnavailable is a dependent store that failed to respond. Retried once.
	KindUpstreamUnavailable Kind = "UpstreamUnavailable"
	// KindInternal is anything else
	KindInternal Kind = "Internal"
)

// Error carries a Kind plus the operation that failed
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %s: %v", e.Op, e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// InvalidInput builds an InvalidInput error
func InvalidInput(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Op: op, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a NotFound error for the named resource
func NotFound(op, resource string) error {
	return &Error{Kind: KindNotFound, Op: op, Message: resource + " not found"}
}

// Upstream wraps an error from an external store
func Upstream(op string, err error) error {
	return &Error{Kind: KindUpstreamUnavailable, Op: op, Err: err}
}

// Internal wraps an unexpected error
func Internal(op string, err error) error {
	return &Error{Kind: KindInternal, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in the chain, or KindInternal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRetryable reports whether the error may be retried. Only upstream failures qualify.
func IsRetryable(err error) bool {
	return Is(err, KindUpstreamUnavailable)
}

// PublicMessage returns the message safe to show a caller
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case KindInvalidInput, KindNotFound:
			return appErr.Message
		case KindUpstreamUnavailable:
			return "A dependent service is unavailable"
		}
	}
	return "An unexpected error occurred"
}

// GetRetryDelay returns an exponential delay for the given attempt, capped at max
func GetRetryDelay(base time.Duration, attempt int, max time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 10 {
		attempt = 10
	}
	delay := base * time.Duration(1<<uint(attempt))
	if delay > max {
		delay = max
	}
	return delay
}
