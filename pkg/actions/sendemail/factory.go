package sendemail

import (
	"github.com/talentlane/automation/pkg/collaborators"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/protocol"
)

func NewFactory(mailer collaborators.Mailer) *Factory {
	return &Factory{mailer: mailer}
}

type Factory struct {
	mailer collaborators.Mailer
}

func (f *Factory) ID() models.ActionType {
	return models.ActionSendEmail
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "Send Email Action Parameters",
		"description": "Delivers an HTML email through the configured mail provider",
		"properties": map[string]any{
			"to": map[string]any{
				"type":        "string",
				"description": "Recipient address, may contain {{event.*}} placeholders",
				"minLength":   1,
			},
			"subject": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
			"html": map[string]any{
				"type":        "string",
				"description": "HTML body, rendered as a template before sending",
				"minLength":   1,
			},
		},
		"required":             []string{"to", "subject", "html"},
		"additionalProperties": false,
	}
}

func (f *Factory) Create(parameters map[string]any) (protocol.Action, error) {
	return NewSendEmailAction(parameters, f.mailer), nil
}
