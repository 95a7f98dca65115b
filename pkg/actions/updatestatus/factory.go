package updatestatus

import (
	"github.com/talentlane/automation/pkg/collaborators"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/protocol"
)

func NewFactory(updater collaborators.StatusUpdater) *Factory {
	return &Factory{updater: updater}
}

type Factory struct {
	updater collaborators.StatusUpdater
}

func (f *Factory) ID() models.ActionType {
	return models.ActionUpdateStatus
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "Update Status Action Parameters",
		"description": "Applies a lifecycle status transition to a marketplace entity",
		"properties": map[string]any{
			"entity_type": map[string]any{
				"type": "string",
				"enum": []string{"job", "proposal", "contract", "invoice"},
			},
			"entity_id": map[string]any{
				"type":        "string",
				"description": "Entity id, may contain {{event.*}} placeholders",
				"minLength":   1,
			},
			"new_status": map[string]any{"type": "string", "minLength": 1},
		},
		"required":             []string{"entity_type", "entity_id", "new_status"},
		"additionalProperties": false,
	}
}

func (f *Factory) Create(parameters map[string]any) (protocol.Action, error) {
	return NewUpdateStatusAction(parameters, f.updater), nil
}
