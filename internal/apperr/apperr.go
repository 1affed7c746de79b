// Package apperr defines the error taxonomy shared by the consensus engine,
// the bill splitter and the transport layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and for status-code mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindInvalidState
	KindEmptyCandidateSet
	KindDependencyUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid input"
	case KindNotFound:
		return "not found"
	case KindInvalidState:
		return "invalid state"
	case KindEmptyCandidateSet:
		return "empty candidate set"
	case KindDependencyUnavailable:
		return "dependency unavailable"
	default:
		return "internal"
	}
}

// Error carries a Kind, a message naming the violated rule, and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrNotFound)
// works for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrInvalidInput          = &Error{Kind: KindInvalidInput, Msg: "invalid input"}
	ErrNotFound              = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrInvalidState          = &Error{Kind: KindInvalidState, Msg: "invalid state"}
	ErrEmptyCandidateSet     = &Error{Kind: KindEmptyCandidateSet, Msg: "empty candidate set"}
	ErrDependencyUnavailable = &Error{Kind: KindDependencyUnavailable, Msg: "dependency unavailable"}
)

func InvalidInput(format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) error {
	return &Error{Kind: KindInvalidState, Msg: fmt.Sprintf(format, args...)}
}

func EmptyCandidateSet(format string, args ...any) error {
	return &Error{Kind: KindEmptyCandidateSet, Msg: fmt.Sprintf(format, args...)}
}

// DependencyUnavailable wraps a transport failure from an external collaborator.
func DependencyUnavailable(err error, format string, args ...any) error {
	return &Error{Kind: KindDependencyUnavailable, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
