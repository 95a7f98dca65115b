// Package generatecontract implements the GENERATE_CONTRACT action: renders
// the contract terms and hands them to the contract-generation collaborator.
package generatecontract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talentlane/automation/pkg/collaborators"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/template"
)

type GenerateContractAction struct {
	parameters map[string]any
	contracts  collaborators.Contracts
}

func NewGenerateContractAction(parameters map[string]any, contracts collaborators.Contracts) *GenerateContractAction {
	return &GenerateContractAction{
		parameters: parameters,
		contracts:  contracts,
	}
}

func (a *GenerateContractAction) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	rendered := template.RenderParameters(a.parameters, executionCtx.TemplateData())

	terms, _ := rendered["terms"].(map[string]any)

	contract := &models.Contract{
		ClientID:     stringField(rendered, "client_id"),
		FreelancerID: stringField(rendered, "freelancer_id"),
		JobID:        stringField(rendered, "job_id"),
		TemplateID:   stringField(rendered, "template_id"),
		Terms:        terms,
	}

	logger = logger.With("action_type", models.ActionGenerateContract,
		"client_id", contract.ClientID, "freelancer_id", contract.FreelancerID)
	logger.InfoContext(ctx, "Generating contract", "template_id", contract.TemplateID)

	created, err := a.contracts.GenerateContract(ctx, contract)
	if err != nil {
		return nil, fmt.Errorf("failed to generate contract: %w", err)
	}

	return map[string]any{
		"contract_id": created.ID,
		"status":      created.Status,
	}, nil
}

func stringField(fields map[string]any, key string) string {
	value, _ := fields[key].(string)

	return value
}
