// Package domainerrors defines the coded application errors the service
// exposes at its boundaries. Domain packages return their own sentinel
// errors; use-case layers translate those into one of the codes below so
// callers see a closed taxonomy instead of arbitrary wrapped failures.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a caller-facing failure category.
type Code string

const (
	// CodeInvalidInput covers malformed or out-of-range request fields.
	CodeInvalidInput Code = "invalid_input"
	// CodeUserNotFound means the identity lookup had no match for the
	// (identifier, issuer) pair.
	CodeUserNotFound Code = "user_not_found"
	// CodeBirthDateMismatch means the supplied birth date differs from the
	// directory's on-file value.
	CodeBirthDateMismatch Code = "birth_date_mismatch"
	// CodeIdentityUnavailable is a transport or availability failure while
	// consulting the user directory.
	CodeIdentityUnavailable Code = "identity_service_unavailable"
	// CodeDispatchFailed means the token delivery channel rejected the
	// request or was unreachable.
	CodeDispatchFailed Code = "token_dispatch_failed"
	// CodePersistenceFailed means the verification state store could not be
	// read or written.
	CodePersistenceFailed Code = "state_persistence_failed"
	// CodeCorruptState means a stored record did not parse; callers treat
	// the record as absent.
	CodeCorruptState Code = "state_deserialization_error"
	// CodeInternal is the fallback for anything unanticipated. Details stay
	// server-side.
	CodeInternal Code = "internal_error"
)

// Error carries a code, a caller-safe message, and an optional cause kept
// only for server-side logging.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New builds a coded error with a caller-safe message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds a coded error that records cause for logging. The message is
// still the only text exposed to callers.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// Is reports whether err (or anything it wraps) carries the given code.
func Is(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// CodeOf extracts the code from err, or CodeInternal when err is not a
// coded error.
func CodeOf(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-safe message for err, falling back to a
// generic message for uncoded errors so internals never leak.
func MessageOf(err error) string {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Message
	}
	return "internal error"
}
