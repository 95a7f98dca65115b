package generatecontract

import (
	"github.com/talentlane/automation/pkg/collaborators"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/protocol"
)

func NewFactory(contracts collaborators.Contracts) *Factory {
	return &Factory{contracts: contracts}
}

type Factory struct {
	contracts collaborators.Contracts
}

func (f *Factory) ID() models.ActionType {
	return models.ActionGenerateContract
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "Generate Contract Action Parameters",
		"description": "Generates a contract from a template for a client/freelancer pair",
		"properties": map[string]any{
			"client_id":     map[string]any{"type": "string", "minLength": 1},
			"freelancer_id": map[string]any{"type": "string", "minLength": 1},
			"job_id":        map[string]any{"type": "string"},
			"template_id":   map[string]any{"type": "string"},
			"terms": map[string]any{
				"type":        "object",
				"description": "Template-renderable term fields (rate, duration, scope, ...)",
			},
		},
		"required":             []string{"client_id", "freelancer_id"},
		"additionalProperties": false,
	}
}

func (f *Factory) Create(parameters map[string]any) (protocol.Action, error) {
	return NewGenerateContractAction(parameters, f.contracts), nil
}
