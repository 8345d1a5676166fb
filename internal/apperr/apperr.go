package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by how the caller should react to it
type Kind int

const (
	KindTransientIO Kind = iota
	KindValidation
	KindUnauthenticated
	KindNotFound
	KindReferential
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not found"
	case KindReferential:
		return "referential"
	default:
		return "transient io"
	}
}

var (
	// ErrValidation matches rejected input (bad title, date, duration).
	ErrValidation = errors.New("validation error")
	// ErrUnauthenticated matches calls made without an active session.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrNotFound matches a practice or drill that no longer exists.
	ErrNotFound = errors.New("not found")
	// ErrReferential matches writes that point at a missing drill.
	ErrReferential = errors.New("referential error")
	// ErrTransientIO matches storage or network failures that are safe to retry.
	ErrTransientIO = errors.New("transient io error")
)

func sentinel(k Kind) error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindNotFound:
		return ErrNotFound
	case KindReferential:
		return ErrReferential
	default:
		return ErrTransientIO
	}
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) and friends match on Kind.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Validation(op string, err error) *Error      { return New(KindValidation, op, err) }
func Unauthenticated(op string, err error) *Error { return New(KindUnauthenticated, op, err) }
func NotFound(op string, err error) *Error        { return New(KindNotFound, op, err) }
func Referential(op string, err error) *Error     { return New(KindReferential, op, err) }
func TransientIO(op string, err error) *Error     { return New(KindTransientIO, op, err) }

// KindOf reports the kind of err. Unclassified errors count as transient.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransientIO
}

// Message renders err as a single line suitable for the status bar
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return "Something went wrong: " + err.Error()
	}
	detail := e.Kind.String()
	if e.Err != nil {
		detail = e.Err.Error()
	}
	switch e.Kind {
	case KindValidation:
		return "Invalid input: " + detail
	case KindUnauthenticated:
		return "You are not signed in. Sign in and try again."
	case KindNotFound:
		return "Not found: " + detail
	case KindReferential:
		return "A drill in this plan no longer exists in the library: " + detail
	default:
		return "Storage unavailable, your plan is kept. Try saving again: " + detail
	}
}
