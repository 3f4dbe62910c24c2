// Package domainerrors defines the closed, code-tagged error type used across
// the service layer.
//
// Every expected failure carries exactly one Code from the enumeration below.
// Stores return sentinel errors (pkg/platform/sentinel); services translate
// them into coded errors; the HTTP layer maps codes to status lines. Anything
// without a code is treated as an unrecovered internal fault and must not
// leak detail to callers.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code tags an error with its domain kind. The set is closed: new kinds are
// added here, never by wrapping arbitrary strings at call sites.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeValidation         Code = "validation_error"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"
	CodeInternal           Code = "internal_error"

	// Admission and lifecycle specific kinds.
	CodeInsufficientCredits Code = "insufficient_credits"
	CodeRouteRestricted     Code = "route_restricted"
	CodeInvalidTransition   Code = "invalid_transition"
	CodeRoleNotEligible     Code = "role_not_eligible"
)

// Error is a coded domain error, optionally wrapping a cause.
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

func (e *Error) Unwrap() error { return e.cause }

// New returns a coded error with no underlying cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf returns a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to err, preserving it for errors.Is/As
// chains. A nil err yields nil.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf returns the code of the outermost coded error in err's chain, or
// CodeInternal when err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf returns the message of the outermost coded error, or an empty
// string when err carries no code.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
