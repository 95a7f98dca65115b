package createreminder

import (
	"github.com/talentlane/automation/pkg/collaborators"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/protocol"
)

func NewFactory(reminders collaborators.Reminders) *Factory {
	return &Factory{reminders: reminders}
}

type Factory struct {
	reminders collaborators.Reminders
}

func (f *Factory) ID() models.ActionType {
	return models.ActionCreateReminder
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "Create Reminder Action Parameters",
		"description": "Persists a reminder for a marketplace user",
		"properties": map[string]any{
			"user_id":     map[string]any{"type": "string", "minLength": 1},
			"title":       map[string]any{"type": "string", "minLength": 1},
			"description": map[string]any{"type": "string"},
			"due_date": map[string]any{
				"type":        "string",
				"description": "RFC3339 timestamp or YYYY-MM-DD, may be templated",
			},
			"priority": map[string]any{
				"type": "string",
				"enum": []string{"LOW", "MEDIUM", "HIGH", "URGENT"},
			},
		},
		"required":             []string{"user_id", "title"},
		"additionalProperties": false,
	}
}

func (f *Factory) Create(parameters map[string]any) (protocol.Action, error) {
	return NewCreateReminderAction(parameters, f.reminders), nil
}
