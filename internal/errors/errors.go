package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource conflict")
	ErrBadRequest     = errors.New("bad request")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")

	// Business errors
	ErrNoDriversAvailable  = errors.New("no drivers available")
	ErrTripAlreadyAssigned = errors.New("trip already has an assigned driver")
	ErrNoAssignedDriver    = errors.New("trip has no assigned driver")
	ErrClaimResolved       = errors.New("claim has already been resolved")
	ErrClaimWindowClosed   = errors.New("claim window is not open")
	ErrClaimLimitReached   = errors.New("claim limit reached")
	ErrEmptyReason         = errors.New("reason must not be empty")
	ErrUpstreamUnavailable = errors.New("upstream store unavailable")
)

// APIError represents a structured API error
type APIError struct {
	Code       string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error
func NewAPIError(code, message string, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func BadRequest(message string) *APIError {
	return NewAPIError("bad_request", message, http.StatusBadRequest)
}

func NotFound(resource string) *APIError {
	return NewAPIError("not_found", fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func Conflict(message string) *APIError {
	return NewAPIError("conflict", message, http.StatusConflict)
}

func InternalError(message string) *APIError {
	return NewAPIError("internal_error", message, http.StatusInternalServerError)
}

func Unauthorized(message string) *APIError {
	return NewAPIError("unauthorized", message, http.StatusUnauthorized)
}

func Forbidden(message string) *APIError {
	return NewAPIError("forbidden", message, http.StatusForbidden)
}

// ConcurrencyConflict is returned when a precondition that held at read time no
// longer holds at commit time. The caller must refresh and retry.
func ConcurrencyConflict(message string) *APIError {
	return NewAPIError("concurrency_conflict", message, http.StatusConflict)
}

func TripAlreadyAssigned() *APIError {
	return ConcurrencyConflict("this trip already has an assigned driver")
}

func NoAssignedDriver() *APIError {
	return ConcurrencyConflict("this trip has no assigned driver")
}

func ClaimAlreadyResolved(status string) *APIError {
	return ConcurrencyConflict(fmt.Sprintf("claim is already %s", status))
}

func AssignmentLocked(status string) *APIError {
	return ConcurrencyConflict(fmt.Sprintf("assignment is locked while trip is %s", status))
}

func ClaimWindowClosed(stage string) *APIError {
	return Conflict(fmt.Sprintf("claim window is not open (stage %s)", stage))
}

func ClaimLimitReached() *APIError {
	return Conflict("the claim limit for this trip has been reached")
}

func EmptyReason() *APIError {
	return NewAPIError("empty_reason", "a non-empty reason is required", http.StatusBadRequest)
}

func UpstreamUnavailable(what string) *APIError {
	return NewAPIError("upstream_unavailable", fmt.Sprintf("%s is unavailable, retry later", what), http.StatusServiceUnavailable)
}
