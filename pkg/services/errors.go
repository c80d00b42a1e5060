// Package services holds the business operations behind the HTTP API.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/vislzr/pkg/persistence"
)

var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest    = errors.New("invalid request")
	ErrProjectIDMismatch = errors.New("project id does not match")
	ErrInvalidEdge       = errors.New("invalid edge")
	ErrPromptRequired    = errors.New("prompt is required")

	// Lookup Errors (404 Not Found).
	ErrActionNotFound = errors.New("action not found")

	// Context Errors (403 Forbidden).
	ErrActionNotAvailable = errors.New("action not available for this node")
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrProjectIDMismatch) ||
		errors.Is(err, ErrInvalidEdge) ||
		errors.Is(err, ErrPromptRequired)
}

// IsNotFound checks if an error should return HTTP 404.
func IsNotFound(err error) bool {
	return persistence.IsNotFound(err) || errors.Is(err, ErrActionNotFound)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrActionNotAvailable)
}

// IsConflictError checks if an error should return HTTP 409.
func IsConflictError(err error) bool {
	return persistence.IsProjectAlreadyExists(err) || persistence.IsNodeAlreadyExists(err)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
