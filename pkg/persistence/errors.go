// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrRuleNotFound indicates a rule was not found by the given identifier.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrRuleAlreadyExists indicates a rule with the same identifier exists.
	ErrRuleAlreadyExists = errors.New("rule already exists")

	// ErrExecutionLogNotFound indicates an execution log was not found.
	ErrExecutionLogNotFound = errors.New("execution log not found")

	// ErrEntityStatusNotFound indicates no tracked status exists for the entity.
	ErrEntityStatusNotFound = errors.New("entity status not found")
)

// RuleError wraps rule-related storage errors with operation context.
type RuleError struct {
	Op     string
	RuleID string
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s operation failed for rule %s: %v", e.Op, e.RuleID, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

// NewRuleError creates a rule error with context.
func NewRuleError(op, ruleID string, err error) *RuleError {
	return &RuleError{Op: op, RuleID: ruleID, Err: err}
}

// IsRuleNotFound reports whether err wraps ErrRuleNotFound.
func IsRuleNotFound(err error) bool {
	return errors.Is(err, ErrRuleNotFound)
}

// IsEntityStatusNotFound reports whether err wraps ErrEntityStatusNotFound.
func IsEntityStatusNotFound(err error) bool {
	return errors.Is(err, ErrEntityStatusNotFound)
}
