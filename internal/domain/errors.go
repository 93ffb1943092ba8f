package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}

	// ProcessFailureError indicates a domain operation failed for a reason
	// not covered by the more specific kinds
	ProcessFailureError struct {
		Message string
	}

	// DatabaseError indicates an infrastructure-level storage failure
	DatabaseError struct {
		Message string
		Err     error
	}
)

// Error implementations
func (e *NotFoundError) Error() string       { return e.Message }
func (e *ValidationError) Error() string     { return e.Message }
func (e *UnauthorizedError) Error() string   { return e.Message }
func (e *ForbiddenError) Error() string      { return e.Message }
func (e *ProcessFailureError) Error() string { return e.Message }

func (e *DatabaseError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int       { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int     { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int   { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int      { return http.StatusForbidden }
func (e *ProcessFailureError) StatusCode() int { return http.StatusUnprocessableEntity }
func (e *DatabaseError) StatusCode() int       { return http.StatusInternalServerError }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("already exists")
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrProcessFailure = errors.New("process failure")
	ErrDatabase       = errors.New("database error")
)

func (e *NotFoundError) Is(target error) bool       { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool     { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool   { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool      { return target == ErrForbidden }
func (e *ProcessFailureError) Is(target error) bool { return target == ErrProcessFailure }
func (e *DatabaseError) Is(target error) bool       { return target == ErrDatabase }

// ConflictError represents a resource conflict: a uniqueness violation or an
// optimistic-concurrency clash detected at commit time.
// Implements HTTPError interface for extensible error handling
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (device, location, card, ...)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
