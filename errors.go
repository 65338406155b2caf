// SPDX-License-Identifier: EPL-2.0

package audstream

import (
	"errors"
	"strings"

	"github.com/ik5/audstream/engine"
)

var (
	// ErrUnsupportedFormat is returned when a resource has no extension or the
	// engine rejects its content.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrResourceNotFound is returned when a resource is missing, unreadable or
	// unreachable.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrIO is returned for any other engine failure.
	ErrIO = errors.New("i/o failure")

	// ErrInvalidArgument is returned when a caller violates a precondition.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIllegalState is returned for operations on a closed session and for
	// buffer resizes while unread data remains.
	ErrIllegalState = errors.New("illegal state")

	// ErrUnsupportedOperation is returned when seeking a session that cannot
	// seek and when a stream is requested from a plain byte source.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Error describes a failed operation. errors.Is matches its Kind, and the
// engine's raw code is kept when there was one.
type Error struct {
	Kind    error
	Op      string
	ID      string
	Code    engine.Code
	HasCode bool
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Op)
	if e.ID != "" {
		b.WriteByte(' ')
		b.WriteString(e.ID)
	}
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())

	cause := ""
	if e.Err != nil {
		cause = e.Err.Error()
		b.WriteString(": ")
		b.WriteString(cause)
	}
	if e.HasCode && !strings.Contains(cause, e.Code.String()) {
		b.WriteString(" (")
		b.WriteString(e.Code.String())
		b.WriteByte(')')
	}

	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == e.Kind }

func newError(kind error, op, id string, cause error) *Error {
	return &Error{Kind: kind, Op: op, ID: id, Err: cause}
}

// translate maps an engine failure onto the error kinds of this package.
func translate(op, id string, err error) error {
	if err == nil {
		return nil
	}

	e := newError(ErrIO, op, id, err)

	code, ok := engine.CodeOf(err)
	if !ok {
		return e
	}
	e.Code, e.HasCode = code, true

	switch {
	case code.NotFound():
		e.Kind = ErrResourceNotFound
	case code.Unsupported():
		e.Kind = ErrUnsupportedFormat
	case code == engine.CodeClosed:
		e.Kind = ErrIllegalState
	case code == engine.CodeNotSeekable:
		e.Kind = ErrUnsupportedOperation
	case code == engine.CodeInvalidArg:
		e.Kind = ErrInvalidArgument
	}

	return e
}
