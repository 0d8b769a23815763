// Package apperr defines the error kinds returned by the service layer and how each maps to HTTP.
//
// Services return *Error values; handlers render them through HTTPStatus. Matching is by kind:
//
//	if errors.Is(err, apperr.ErrNotFound) {
//	    ...
//	}
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindValidation         Kind = "VALIDATION_ERROR"
	KindUnprocessable      Kind = "UNPROCESSABLE"
	KindNotFound           Kind = "NOT_FOUND"
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindForbidden          Kind = "FORBIDDEN"
	KindDuplicateEmail     Kind = "DUPLICATE_EMAIL"
	KindDuplicateReview    Kind = "DUPLICATE_REVIEW"
	KindAlreadyFollowing   Kind = "ALREADY_FOLLOWING"
	KindNotFollowing       Kind = "NOT_FOLLOWING"
	KindAlreadyPresent     Kind = "ALREADY_PRESENT"
	KindNotPresent         Kind = "NOT_PRESENT"
	KindLimitExceeded      Kind = "LIMIT_EXCEEDED"
	KindInvalidOperation   Kind = "INVALID_OPERATION"
	KindRateLimited        Kind = "RATE_LIMITED"
	KindUnexpected         Kind = "UNEXPECTED"
)

// HTTPStatus returns the status code a handler should answer with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindDuplicateEmail, KindAlreadyFollowing, KindNotFollowing,
		KindAlreadyPresent, KindNotPresent, KindLimitExceeded, KindInvalidOperation:
		return http.StatusBadRequest
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthenticated, KindInvalidCredentials:
		return http.StatusUnauthorized
	case KindForbidden, KindDuplicateReview:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a kind, a user-facing message and optional details.
type Error struct {
	Kind    Kind   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// HTTPStatus returns the status code for this error's kind.
func (e *Error) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// WithDetails returns a copy carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinels for errors.Is.
var (
	ErrValidation         = &Error{Kind: KindValidation, Message: "validation error"}
	ErrUnprocessable      = &Error{Kind: KindUnprocessable, Message: "unprocessable entity"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUnauthenticated    = &Error{Kind: KindUnauthenticated, Message: "Unauthorised user"}
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "Authentication failed. Invalid email or password"}
	ErrForbidden          = &Error{Kind: KindForbidden, Message: "Access forbidden: You do not have the required permissions"}
	ErrDuplicateEmail     = &Error{Kind: KindDuplicateEmail, Message: "Email already in use"}
	ErrDuplicateReview    = &Error{Kind: KindDuplicateReview, Message: "You have already reviewed this book. Edit or delete your existing review first."}
	ErrAlreadyFollowing   = &Error{Kind: KindAlreadyFollowing, Message: "You are already following this user."}
	ErrNotFollowing       = &Error{Kind: KindNotFollowing, Message: "You are not following this user."}
	ErrAlreadyPresent     = &Error{Kind: KindAlreadyPresent, Message: "already present"}
	ErrNotPresent         = &Error{Kind: KindNotPresent, Message: "not present"}
	ErrLimitExceeded      = &Error{Kind: KindLimitExceeded, Message: "limit exceeded"}
	ErrInvalidOperation   = &Error{Kind: KindInvalidOperation, Message: "invalid operation"}
	ErrRateLimited        = &Error{Kind: KindRateLimited, Message: "too many requests"}
	ErrUnexpected         = &Error{Kind: KindUnexpected, Message: "unexpected error"}
)

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

func Unprocessable(format string, args ...any) *Error {
	return newf(KindUnprocessable, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newf(KindForbidden, format, args...)
}

func AlreadyPresent(format string, args ...any) *Error {
	return newf(KindAlreadyPresent, format, args...)
}

func NotPresent(format string, args ...any) *Error {
	return newf(KindNotPresent, format, args...)
}

func LimitExceeded(format string, args ...any) *Error {
	return newf(KindLimitExceeded, format, args...)
}

func InvalidOperation(format string, args ...any) *Error {
	return newf(KindInvalidOperation, format, args...)
}

// Unexpected reports a persistence failure at the named step. The cause is kept for logging
// but is not part of the rendered message.
func Unexpected(step string, cause error) *Error {
	return &Error{Kind: KindUnexpected, Message: "failed to " + step, cause: cause}
}

// InvalidID reports an identifier that is not a well-formed ObjectID.
func InvalidID(entity, raw string) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf("Invalid %s ID: %s", entity, raw)}
}

// From returns err as *Error, wrapping unknown errors as Unexpected.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Unexpected("process request", err)
}
