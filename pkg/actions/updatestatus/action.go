// Package updatestatus implements the UPDATE_STATUS action: renders the
// entity reference and forwards the status transition to the entity-status
// collaborator, which owns the lifecycle rules.
package updatestatus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talentlane/automation/pkg/collaborators"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/template"
)

type UpdateStatusAction struct {
	entityType string
	entityID   string
	newStatus  string
	updater    collaborators.StatusUpdater
}

func NewUpdateStatusAction(parameters map[string]any, updater collaborators.StatusUpdater) *UpdateStatusAction {
	entityType, _ := parameters["entity_type"].(string)
	entityID, _ := parameters["entity_id"].(string)
	newStatus, _ := parameters["new_status"].(string)

	return &UpdateStatusAction{
		entityType: entityType,
		entityID:   entityID,
		newStatus:  newStatus,
		updater:    updater,
	}
}

func (a *UpdateStatusAction) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	data := executionCtx.TemplateData()

	entityID := template.Render(a.entityID, data)
	newStatus := template.Render(a.newStatus, data)

	logger = logger.With("action_type", models.ActionUpdateStatus,
		"entity_type", a.entityType, "entity_id", entityID)
	logger.InfoContext(ctx, "Updating entity status", "new_status", newStatus)

	if err := a.updater.UpdateStatus(ctx, a.entityType, entityID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}

	return map[string]any{
		"entity_type": a.entityType,
		"entity_id":   entityID,
		"new_status":  newStatus,
	}, nil
}
