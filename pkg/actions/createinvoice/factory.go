package createinvoice

import (
	"github.com/talentlane/automation/pkg/collaborators"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/protocol"
)

func NewFactory(invoicing collaborators.Invoicing) *Factory {
	return &Factory{invoicing: invoicing}
}

type Factory struct {
	invoicing collaborators.Invoicing
}

func (f *Factory) ID() models.ActionType {
	return models.ActionCreateInvoice
}

func (f *Factory) Schema() map[string]any {
	return map[string]any{
		"type":        "object",
		"title":       "Create Invoice Action Parameters",
		"description": "Persists a new invoice for a client/freelancer pair",
		"properties": map[string]any{
			"client_id":     map[string]any{"type": "string", "minLength": 1},
			"freelancer_id": map[string]any{"type": "string", "minLength": 1},
			"job_id":        map[string]any{"type": "string"},
			"title":         map[string]any{"type": "string", "minLength": 1},
			"items": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": map[string]any{"type": "string", "minLength": 1},
						"quantity":    map[string]any{"type": []string{"number", "string"}},
						"unit_price":  map[string]any{"type": []string{"number", "string"}},
					},
					"required": []string{"description", "quantity", "unit_price"},
				},
			},
			"tax_rate": map[string]any{"type": []string{"number", "string"}},
			"due_date": map[string]any{
				"type":        "string",
				"description": "RFC3339 timestamp or YYYY-MM-DD, may be templated",
			},
		},
		"required":             []string{"client_id", "freelancer_id", "title", "items"},
		"additionalProperties": false,
	}
}

func (f *Factory) Create(parameters map[string]any) (protocol.Action, error) {
	return NewCreateInvoiceAction(parameters, f.invoicing), nil
}
