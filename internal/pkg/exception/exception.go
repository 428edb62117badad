package exception

import (
	"errors"
	"fmt"
)

// Kind classifies where a funnel error came from and how the caller should react.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindTransport    Kind = "transport"
	KindBusiness     Kind = "business"
	KindDegraded     Kind = "degraded"
	KindStale        Kind = "stale"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
)

// ApplicationError handles application level errors.
type ApplicationError struct {
	Message    string
	StatusCode int
	Kind       Kind
	// Redirect is the entry point the client should go back to, if any.
	Redirect string
	Cause    error

	// base is the sentinel message before WithMessage replaced it.
	base string
}

// Error interface implementation.
func (e ApplicationError) Error() string {
	if e.Cause == nil || e.Cause.Error() == e.Message {
		return e.Message
	}

	return fmt.Sprintf("%s: %s", e.Message, e.Cause)
}

func (e ApplicationError) Unwrap() error {
	if e.Cause == nil {
		return errors.New(e.Message)
	}

	return e.Cause
}

func (e ApplicationError) Is(target error) bool {
	var targetErr ApplicationError

	if !errors.As(target, &targetErr) {
		return false
	}

	if e.Kind != targetErr.Kind {
		return false
	}

	return e.Message == targetErr.Message || (e.base != "" && e.base == targetErr.Message)
}

// ErrorCode returns error code for an application error.
func (e ApplicationError) ErrorCode() int {
	return e.StatusCode
}

// WithCause returns a copy of the error wrapping cause.
func (e ApplicationError) WithCause(cause error) ApplicationError {
	e.Cause = cause
	return e
}

// WithMessage returns a copy of the error with a more specific message. The copy still
// matches the sentinel it was derived from.
func (e ApplicationError) WithMessage(msg string) ApplicationError {
	if e.base == "" {
		e.base = e.Message
	}
	e.Message = msg
	return e
}

// KindOf returns the kind of the first ApplicationError in err's chain.
func KindOf(err error) (Kind, bool) {
	var appErr ApplicationError
	if !errors.As(err, &appErr) {
		return "", false
	}

	return appErr.Kind, true
}
