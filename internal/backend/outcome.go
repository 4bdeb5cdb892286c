package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrClosed is carried by outcomes of calls made after Close.
var ErrClosed = errors.New("backend client closed")

// ErrorKind classifies why a backend call failed.
type ErrorKind int

const (
	// KindTransport covers connection errors and timeouts.
	KindTransport ErrorKind = iota + 1
	// KindRejected is a non-2xx response from the backend.
	KindRejected
	// KindDecode is a 2xx response whose body could not be read.
	KindDecode
	// KindClosed is a call issued after the client was shut down.
	KindClosed
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejected:
		return "rejected"
	case KindDecode:
		return "decode"
	case KindClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Error is the failure side of an Outcome.
type Error struct {
	Op      string
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindRejected:
		return fmt.Sprintf("backend %s: status %d: %s", e.Op, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("backend %s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("backend %s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a backend 404 rejection.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindRejected && apiErr.Status == http.StatusNotFound
}

// Outcome is the result of a backend call. Exactly one of Value and Err is
// meaningful: check Ok before reading Value.
type Outcome[T any] struct {
	Value T
	Err   error
}

// Success wraps a payload in a successful outcome.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Failure wraps an error in a failed outcome. A nil error is replaced so the
// outcome can never be mistaken for a success.
func Failure[T any](err error) Outcome[T] {
	if err == nil {
		err = &Error{Op: "unknown", Kind: KindTransport}
	}
	return Outcome[T]{Err: err}
}

// Ok reports whether the call succeeded.
func (o Outcome[T]) Ok() bool { return o.Err == nil }
