// Package protocol defines the contracts between the rule executor and the
// pluggable action handlers.
package protocol

import (
	"context"
	"log/slog"

	"github.com/talentlane/automation/pkg/models"
)

// Action executes one side effect for a rule run. Implementations render
// their templated parameters against the execution context before calling
// their collaborator, and must return an error instead of panicking.
type Action interface {
	Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error)
}

// ActionFactory builds actions of one type from raw rule parameters.
type ActionFactory interface {
	ID() models.ActionType
	Create(parameters map[string]any) (Action, error)
	Schema() map[string]any
}
