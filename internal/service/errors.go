package service

import (
	"errors"
	"net/http"
)

// ErrMisconfigured is returned at startup when auth settings are unusable.
var ErrMisconfigured = errors.New("auth config invalid")

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuthentication
	KindForbidden
	KindNotFound
	KindConflict
)

func (k ErrorKind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// AppError is an expected failure whose Message is safe to show to clients.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) Status() int { return e.Kind.Status() }

func newAppError(kind ErrorKind, msg string, cause []error) *AppError {
	e := &AppError{Kind: kind, Message: msg}
	if len(cause) > 0 {
		e.Err = cause[0]
	}
	return e
}

func ValidationError(msg string, cause ...error) *AppError {
	return newAppError(KindValidation, msg, cause)
}

func AuthenticationError(msg string, cause ...error) *AppError {
	return newAppError(KindAuthentication, msg, cause)
}

func ForbiddenError(msg string, cause ...error) *AppError {
	return newAppError(KindForbidden, msg, cause)
}

func NotFoundError(msg string, cause ...error) *AppError {
	return newAppError(KindNotFound, msg, cause)
}

func ConflictError(msg string, cause ...error) *AppError {
	return newAppError(KindConflict, msg, cause)
}

// KindOf reports the kind of the first AppError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return 0, false
}
