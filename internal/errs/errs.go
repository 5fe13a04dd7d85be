// Package errs holds the error taxonomy shared by the client packages.
//
// Every failure a caller can recover from is an *Error carrying a Kind and a
// stable Code. Sentinels are declared by the owning package with New and
// matched with errors.Is, which compares codes, so a sentinel still matches
// after it has been wrapped around an underlying cause with Wrap.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is bad user input. Surfaced as a message, never retried.
	KindValidation
	// KindConfiguration is a missing or broken setting. Fatal to the operation.
	KindConfiguration
	// KindNetwork is a fetch or broadcast failure.
	KindNetwork
	// KindState is a conflict with current state, e.g. a busy or full slot.
	KindState
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfiguration:
		return "configuration"
	case KindNetwork:
		return "network"
	case KindState:
		return "state"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind  Kind
	Code  string
	Msg   string
	Cause error
}

// New declares a sentinel.
func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap attaches cause to a copy of sentinel.
func Wrap(sentinel *Error, cause error) error {
	return &Error{Kind: sentinel.Kind, Code: sentinel.Code, Msg: sentinel.Msg, Cause: cause}
}

// Wrapf attaches a formatted detail to a copy of sentinel.
func Wrapf(sentinel *Error, format string, args ...any) error {
	return Wrap(sentinel, errors.Errorf(format, args...))
}

// KindOf reports the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf reports the code of the outermost *Error in err's chain.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
