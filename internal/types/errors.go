package types

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure. Every error surfaced to a caller
// carries exactly one Kind; the transport layer maps it to a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindUnavailable
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid-argument"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not-found"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Sentinel errors, one per Kind. errors.Is(err, ErrNotFound) holds for any
// *Error whose Kind is KindNotFound.
var (
	// ErrInvalidArgument indicates a malformed, out-of-range or disallowed value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnauthenticated indicates the endpoint needs an identifiable caller.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates the caller lacks the required role.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound indicates a well-formed identifier that does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable indicates the store cannot be reached.
	ErrUnavailable = errors.New("store unavailable")

	// ErrInternal indicates an unclassified failure.
	ErrInternal = errors.New("internal error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindUnavailable:
		return ErrUnavailable
	default:
		return ErrInternal
	}
}

// Error is the single structured failure returned for a request.
// Field names the offending parameter when there is one.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.sentinel().Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// InvalidArgument builds a KindInvalidArgument error for field.
func InvalidArgument(field, format string, args ...any) *Error {
	return &Error{Kind: KindInvalidArgument, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error for field.
func NotFound(field, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Forbidden builds a KindForbidden error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Unauthenticated builds a KindUnauthenticated error.
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Unavailable wraps a connectivity failure.
func Unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Message: "no connection to the data store", Err: err}
}

// Internal wraps an unclassified failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf reports the Kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// FieldOf returns the offending field recorded on err, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}
