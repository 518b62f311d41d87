// Package errs provides typed application errors so the HTTP layer can map
// failures to status codes without string matching.
package errs

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	Unknown Kind = iota
	Unauthorized
	PermissionDenied
	RateLimitExceeded
	Validation
	Conflict
	NotFound
	Gone
	Forbidden
	Internal
)

func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "Unauthorized"
	case PermissionDenied:
		return "PermissionDenied"
	case RateLimitExceeded:
		return "RateLimitExceeded"
	case Validation:
		return "ValidationError"
	case Conflict:
		return "Conflict"
	case NotFound:
		return "NotFound"
	case Gone:
		return "Gone"
	case Forbidden:
		return "Forbidden"
	case Internal:
		return "InternalError"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Error carries the operation that failed and its kind alongside the cause.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// E wraps err with an operation and kind. Returns nil if err is nil.
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// Ef is E with a formatted message as the cause.
func Ef(op string, kind Kind, format string, args ...interface{}) error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Message returns the cause message without the operation prefix,
// suitable for client responses.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return err.Error()
}
