// Package errs classifies domain and application errors so the transport layer can map them
// to response categories without knowing every concrete error type.
package errs

import (
	"errors"
	"fmt"
)

// Kind is the category of an error.
type Kind int

const (
	// Internal is the kind of any error that does not declare one (database failures, bugs).
	Internal Kind = iota
	Validation
	NotFound
	Conflict
	AccessDenied
	Dispatch
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case AccessDenied:
		return "access_denied"
	case Dispatch:
		return "dispatch"
	default:
		return "internal"
	}
}

type kinded interface {
	Kind() Kind
}

// KindOf returns the kind of the first error in err's chain that declares one, or Internal.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return Internal
}

// Is reports whether err's chain carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Error is a field-less error with a fixed kind. Values are compared with errors.Is.
type Error struct {
	kind Kind
	msg  string
}

// New returns a sentinel error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Kind() Kind { return e.kind }

// TooLongError is returned when a text field exceeds its maximum length.
type TooLongError struct {
	Field  string
	Max    int
	Length int
}

func (e *TooLongError) Error() string {
	return fmt.Sprintf("%s is too long: %d characters, max %d", e.Field, e.Length, e.Max)
}

func (e *TooLongError) Kind() Kind { return Validation }
