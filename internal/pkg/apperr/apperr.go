// Package apperr classifies domain errors so the HTTP layer can pick a status code.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalid      = errors.New("invalid request")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is a message tagged with a kind and an optional cause
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil && e.Msg == "" {
		return e.Cause.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// New declares a sentinel of the given kind
func New(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Invalidf builds an ErrInvalid error with a formatted message
func Invalidf(format string, args ...any) error {
	return &Error{Kind: ErrInvalid, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags err with kind, keeping its message
func Wrap(kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Cause: err}
}

// KindOf returns the kind of err, or nil if it carries none
func KindOf(err error) error {
	for _, kind := range []error{ErrNotFound, ErrInvalid, ErrForbidden, ErrUnauthorized} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Message returns the user facing message in err's chain. Detail appended
// after a tagged message ("msg: detail") is kept, outer wrapping is not.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if full := err.Error(); strings.HasPrefix(full, e.Error()+": ") {
			return full
		}
		return e.Error()
	}
	return err.Error()
}
