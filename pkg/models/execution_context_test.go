package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionContext_TemplateData(t *testing.T) {
	startedAt := time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC)

	ctx := ExecutionContext{
		ID:          "exec-1",
		RuleID:      "rule-1",
		TriggeredBy: TriggeredByEvent,
		StartedAt:   startedAt,
		Event: &DomainEvent{
			ID:        "evt-1",
			EventType: EventInvoicePaid,
			Timestamp: startedAt,
			Payload: map[string]any{
				"client_id": "client-42",
				"amount":    250.0,
			},
		},
	}

	data := ctx.TemplateData()

	execution, ok := data["execution"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "exec-1", execution["id"])
	assert.Equal(t, "rule-1", execution["rule_id"])
	assert.Equal(t, "EVENT", execution["triggered_by"])

	event, ok := data["event"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "evt-1", event["id"])
	assert.Equal(t, "INVOICE_PAID", event["event_type"])

	// Payload keys are flattened next to the event metadata.
	assert.Equal(t, "client-42", event["client_id"])
	assert.Equal(t, 250.0, event["amount"])
}

func TestExecutionContext_TemplateData_NoEvent(t *testing.T) {
	ctx := ExecutionContext{ID: "exec-1", TriggeredBy: TriggeredByManual}

	data := ctx.TemplateData()
	assert.Contains(t, data, "execution")
	assert.NotContains(t, data, "event")
}

func TestExecutionContext_MatchData(t *testing.T) {
	ctx := ExecutionContext{
		Event: &DomainEvent{
			EventType: EventProposalAccepted,
			Payload: map[string]any{
				"job_id": "job-9",
				"budget": 1200.0,
			},
		},
	}

	data := ctx.MatchData()
	assert.Equal(t, "PROPOSAL_ACCEPTED", data["event_type"])
	assert.Equal(t, "job-9", data["job_id"])
	assert.Equal(t, 1200.0, data["budget"])

	empty := ExecutionContext{}
	assert.Empty(t, empty.MatchData())
}
