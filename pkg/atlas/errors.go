package atlas

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("pending invoice not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTransport        = errors.New("transport failure")
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrDecode           = errors.New("malformed invoice document")
)

// ErrorKind classifies a fetch failure.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindForbidden        ErrorKind = "forbidden"
	KindUnauthorized     ErrorKind = "unauthorized"
	KindTransport        ErrorKind = "transport"
	KindUnexpectedStatus ErrorKind = "unexpected_status"
	KindDecode           ErrorKind = "decode"
	KindUnknown          ErrorKind = "unknown"
)

// AllErrorKinds lists every kind Classify can return.
var AllErrorKinds = []ErrorKind{
	KindNotFound,
	KindForbidden,
	KindUnauthorized,
	KindTransport,
	KindUnexpectedStatus,
	KindDecode,
	KindUnknown,
}

// StatusError is returned when Atlas responds with a status code that has no
// dedicated error.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %d", ErrUnexpectedStatus, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// TransportError wraps a failure to complete the HTTP round trip, including
// timeouts.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%v: GET %s: %v", ErrTransport, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// DecodeError wraps a failure to decode the invoice body.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: %v", ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Classify maps an error returned by a Fetcher to its ErrorKind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrUnexpectedStatus):
		return KindUnexpectedStatus
	case errors.Is(err, ErrDecode):
		return KindDecode
	}
	return KindUnknown
}
