package rest

import (
	"fmt"
	"net/http"
	"time"
)

// APIError is an error with an HTTP rendering. Handlers and checks return
// plain errors; dispatch maps anything carrying an APIError (directly or
// wrapped) to its status and payload, and everything else to a 500 with the
// message withheld.
type APIError struct {
	Status  int
	Code    string
	Message string

	// Wait is the suggested retry delay for throttled requests.
	Wait time.Duration

	// Fields carries per-field validation messages.
	Fields map[string]string
}

func (e *APIError) Error() string { return e.Message }

// Is matches two APIErrors by code, so errors.Is(err, ErrNotFound) holds for
// any not_found error regardless of its message.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

var (
	ErrNotAuthenticated = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    "not_authenticated",
		Message: "authentication credentials were not provided",
	}
	ErrAuthenticationFailed = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    "authentication_failed",
		Message: "incorrect authentication credentials",
	}
	ErrPermissionDenied = &APIError{
		Status:  http.StatusForbidden,
		Code:    "permission_denied",
		Message: "you do not have permission to perform this action",
	}
	ErrNotFound = &APIError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: "not found",
	}
	ErrMethodNotAllowed = &APIError{
		Status:  http.StatusMethodNotAllowed,
		Code:    "method_not_allowed",
		Message: "method not allowed",
	}
	ErrThrottled = &APIError{
		Status:  http.StatusTooManyRequests,
		Code:    "throttled",
		Message: "request was throttled",
	}
	ErrValidation = &APIError{
		Status:  http.StatusBadRequest,
		Code:    "invalid",
		Message: "invalid input",
	}
	ErrConflict = &APIError{
		Status:  http.StatusConflict,
		Code:    "conflict",
		Message: "conflict",
	}
)

// PermissionDenied returns a permission_denied error with a custom message.
func PermissionDenied(message string) *APIError {
	if message == "" {
		return ErrPermissionDenied
	}
	return &APIError{
		Status:  http.StatusForbidden,
		Code:    ErrPermissionDenied.Code,
		Message: message,
	}
}

// NotFound returns a not_found error with a custom message.
func NotFound(format string, args ...any) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    ErrNotFound.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Conflict returns a conflict error with a custom message.
func Conflict(message string) *APIError {
	if message == "" {
		return ErrConflict
	}
	return &APIError{
		Status:  http.StatusConflict,
		Code:    ErrConflict.Code,
		Message: message,
	}
}

// Throttled returns a throttled error carrying the suggested retry delay.
func Throttled(wait time.Duration) *APIError {
	return &APIError{
		Status:  http.StatusTooManyRequests,
		Code:    ErrThrottled.Code,
		Message: fmt.Sprintf("request was throttled, retry in %s", wait),
		Wait:    wait,
	}
}

// ValidationError returns an invalid error carrying per-field messages.
func ValidationError(fields map[string]string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    ErrValidation.Code,
		Message: "invalid input",
		Fields:  fields,
	}
}
