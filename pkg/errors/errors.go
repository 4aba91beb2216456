package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors shared by the storefront packages. Stores and upstream
// clients wrap these; handlers map them to responses with Classify.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal error")
	ErrServiceUnavail = errors.New("service unavailable")
)

// kind ties a sentinel to its response code, status and the message shown
// when only the sentinel is known.
type kind struct {
	sentinel error
	code     string
	status   int
	message  string
}

var kinds = []kind{
	{ErrNotFound, "NOT_FOUND", http.StatusNotFound, "resource not found"},
	{ErrInvalidInput, "INVALID_INPUT", http.StatusBadRequest, ""},
	{ErrUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized, "authentication required"},
	{ErrForbidden, "FORBIDDEN", http.StatusForbidden, "access denied"},
	{ErrConflict, "CONFLICT", http.StatusConflict, "conflicting update"},
	{ErrServiceUnavail, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, "upstream service unavailable"},
}

const internalMessage = "an internal error occurred"

// AppError is an error carrying a stable code, a client-facing message and
// the HTTP status it maps to.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(sentinel error, message string) *AppError {
	for _, k := range kinds {
		if k.sentinel == sentinel {
			return &AppError{Code: k.code, Message: message, Status: k.status, Err: sentinel}
		}
	}
	return Internal(sentinel)
}

// NotFound reports a missing resource, e.g. NotFound("cart ledger", profileID).
func NotFound(resource, id string) *AppError {
	return newError(ErrNotFound, fmt.Sprintf("%s with id %s not found", resource, id))
}

// InvalidInput reports a request the caller must fix.
func InvalidInput(message string) *AppError {
	return newError(ErrInvalidInput, message)
}

// Unauthorized reports missing or rejected credentials.
func Unauthorized(message string) *AppError {
	return newError(ErrUnauthorized, message)
}

// Forbidden reports credentials that lack access.
func Forbidden(message string) *AppError {
	return newError(ErrForbidden, message)
}

// Conflict reports a write that lost a race.
func Conflict(message string) *AppError {
	return newError(ErrConflict, message)
}

// ServiceUnavailable reports an upstream that cannot be reached.
func ServiceUnavailable(message string) *AppError {
	return newError(ErrServiceUnavail, message)
}

// Internal creates a 500 error that hides the wrapped cause from clients.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: internalMessage,
		Status:  http.StatusInternalServerError,
		Err:     fmt.Errorf("%w: %w", ErrInternal, err),
	}
}

// Classify returns the response code, status and client-facing message for
// err. AppErrors keep their own; bare sentinels use their defaults, and
// invalid input echoes err's text. Everything else is an internal error.
func Classify(err error) (code string, status int, message string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, appErr.Status, appErr.Message
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			if k.message == "" {
				return k.code, k.status, err.Error()
			}
			return k.code, k.status, k.message
		}
	}
	return "INTERNAL_ERROR", http.StatusInternalServerError, internalMessage
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	_, status, _ := Classify(err)
	return status
}
