package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	Unknown Kind = iota
	Validation
	Persistence
	Network
	ImportRejected
	Notification
	NotFound
	Forbidden
	Unauthorized
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "ValidationError"
	case Persistence:
		return "PersistenceError"
	case Network:
		return "NetworkError"
	case ImportRejected:
		return "ImportRejected"
	case Notification:
		return "NotificationError"
	case NotFound:
		return "NotFound"
	case Forbidden:
		return "Forbidden"
	case Unauthorized:
		return "Unauthorized"
	case Conflict:
		return "Conflict"
	default:
		return "Unknown"
	}
}

func (k Kind) HTTPStatus() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case ImportRejected:
		return http.StatusUnprocessableEntity
	case Network:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a human-readable summary (Msg), an optional technical
// detail for support diagnosis, and the underlying cause.
type Error struct {
	Kind   Kind
	Msg    string
	Detail string
	Err    error
}

func New(kind Kind, msg string, cause error) *Error {
	e := &Error{Kind: kind, Msg: msg, Err: cause}
	if cause != nil {
		e.Detail = cause.Error()
	}
	return e
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) WithDetail(detail string) *Error {
	e.Detail = detail
	return e
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: Validation, Msg: fmt.Sprintf(format, args...)}
}

func Persistencef(cause error, format string, args ...any) *Error {
	return New(Persistence, fmt.Sprintf(format, args...), cause)
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Msg: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...any) *Error {
	return &Error{Kind: Forbidden, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: Conflict, Msg: fmt.Sprintf(format, args...)}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
