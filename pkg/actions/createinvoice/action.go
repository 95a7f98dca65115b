// Package createinvoice implements the CREATE_INVOICE action: renders the
// invoice fields and line items against the execution context and persists
// the invoice through the invoicing collaborator.
package createinvoice

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/talentlane/automation/pkg/collaborators"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/template"
)

type CreateInvoiceAction struct {
	parameters map[string]any
	invoicing  collaborators.Invoicing
}

func NewCreateInvoiceAction(parameters map[string]any, invoicing collaborators.Invoicing) *CreateInvoiceAction {
	return &CreateInvoiceAction{
		parameters: parameters,
		invoicing:  invoicing,
	}
}

func (a *CreateInvoiceAction) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	rendered := template.RenderParameters(a.parameters, executionCtx.TemplateData())

	invoice := &models.Invoice{
		ClientID:     stringField(rendered, "client_id"),
		FreelancerID: stringField(rendered, "freelancer_id"),
		JobID:        stringField(rendered, "job_id"),
		Title:        stringField(rendered, "title"),
		TaxRate:      numberField(rendered, "tax_rate"),
		Items:        invoiceItems(rendered["items"]),
	}

	if due := stringField(rendered, "due_date"); due != "" {
		dueDate, err := parseDate(due)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date %q: %w", due, err)
		}

		invoice.DueDate = &dueDate
	}

	logger = logger.With("action_type", models.ActionCreateInvoice, "client_id", invoice.ClientID)
	logger.InfoContext(ctx, "Creating invoice", "title", invoice.Title, "items", len(invoice.Items))

	created, err := a.invoicing.CreateInvoice(ctx, invoice)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	return map[string]any{
		"invoice_id": created.ID,
		"total":      created.Total,
		"status":     created.Status,
	}, nil
}

func invoiceItems(raw any) []models.InvoiceItem {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	items := make([]models.InvoiceItem, 0, len(list))

	for _, entry := range list {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		items = append(items, models.InvoiceItem{
			Description: stringField(fields, "description"),
			Quantity:    numberField(fields, "quantity"),
			UnitPrice:   numberField(fields, "unit_price"),
		})
	}

	return items
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date format")
}

func stringField(fields map[string]any, key string) string {
	value, _ := fields[key].(string)

	return value
}

// numberField tolerates templated numeric values, which render to strings.
func numberField(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}

		return parsed
	default:
		return 0
	}
}
