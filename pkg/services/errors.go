// Package services provides the business logic layer between the HTTP
// handlers and persistence.
package services

import (
	"errors"
	"fmt"

	"github.com/talentlane/automation/pkg/models"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest = errors.New("invalid request")
	ErrRuleNil        = errors.New("rule cannot be nil")

	// Conflicts (409 Conflict).
	ErrRuleInactive = errors.New("rule is inactive")
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
		errors.Is(err, ErrRuleNil) ||
		errors.Is(err, models.ErrEmptyActions) ||
		errors.Is(err, models.ErrUnknownActionType) ||
		errors.Is(err, models.ErrUnknownTriggerType) ||
		errors.Is(err, models.ErrInvalidSchedule) ||
		errors.Is(err, models.ErrMissingEventType)
}

// IsConflictError checks if an error is a business logic conflict that should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrRuleInactive)
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
