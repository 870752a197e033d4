package qrz

import (
	"errors"
	"fmt"
)

// Kind tags an Error with the decision the caller has to make about it.
type Kind int

const (
	// KindTransport covers network failures, malformed responses and any
	// other condition that is neither of the kinds below.
	KindTransport Kind = iota
	// KindAuthentication means the session was rejected or has expired.
	KindAuthentication
	// KindNotFound means the provider has no record for the term.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindNotFound:
		return "not_found"
	default:
		return "transport"
	}
}

var (
	ErrAuthentication = errors.New("qrz: authentication failed")
	ErrNotFound       = errors.New("qrz: record not found")
	ErrTransport      = errors.New("qrz: transport failure")

	// ErrMalformed is wrapped by transport errors produced from a response
	// that was not well-formed XML in the provider's schema.
	ErrMalformed = errors.New("malformed response")
	// ErrUnexpectedResponse is wrapped by transport errors produced from a
	// well-formed response that carries neither an error nor the record.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// Error is the error type returned by everything in this package.
//
// Use errors.Is with ErrAuthentication, ErrNotFound or ErrTransport to
// branch on it, or KindOf to switch on the kind directly.
type Error struct {
	Kind Kind
	// Message is the provider's error message when there is one.
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.Kind == KindAuthentication
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrTransport:
		return e.Kind == KindTransport
	}
	return false
}

// KindOf returns the Kind of err, anything that isn't an *Error is a
// transport failure.
func KindOf(err error) Kind {
	var qrzErr *Error
	if errors.As(err, &qrzErr) {
		return qrzErr.Kind
	}
	return KindTransport
}

func authError(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func transportError(message string, err error) *Error {
	return &Error{Kind: KindTransport, Message: message, Err: err}
}
