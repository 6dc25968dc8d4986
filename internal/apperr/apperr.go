// Package apperr defines the error kinds surfaced to API callers.
//
// Every error carries a human-readable message which is shown to users as is,
// and unwraps to one of the sentinel kinds so callers can branch with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation error")
	ErrStaleState       = errors.New("stale state")
)

type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func PermissionDenied(format string, args ...any) error {
	return newError(ErrPermissionDenied, format, args...)
}

func Validation(format string, args ...any) error {
	return newError(ErrValidation, format, args...)
}

func StaleState(format string, args ...any) error {
	return newError(ErrStaleState, format, args...)
}

// Is reports whether err is an application error of the given kind.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}
