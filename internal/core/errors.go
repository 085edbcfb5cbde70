package core

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of business failure categories the engine can
// raise. Adapters dispatch on the kind to pick a transport-level response;
// anything that is not a *Error is an infrastructure failure.
type ErrorKind string

const (
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindAlreadyExists   ErrorKind = "ALREADY_EXISTS"
	KindTypeMismatch    ErrorKind = "TYPE_MISMATCH"
	KindInvalidArgument ErrorKind = "INVALID_ARGUMENT"
)

// Error is a business rule violation. It carries no stack or cause: business
// errors are terminal and propagate to the caller without local recovery.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func AlreadyExistsf(format string, args ...any) error {
	return &Error{Kind: KindAlreadyExists, Message: fmt.Sprintf(format, args...)}
}

func TypeMismatchf(format string, args ...any) error {
	return &Error{Kind: KindTypeMismatch, Message: fmt.Sprintf(format, args...)}
}

func InvalidArgumentf(format string, args ...any) error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the business error kind of err, or "" if err is not a
// business error (e.g. a wrapped pgx failure).
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a business error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
