package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentlane/automation/pkg/executor"
	"github.com/talentlane/automation/pkg/locks"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/persistence/file"
	"github.com/talentlane/automation/pkg/protocol"
	"github.com/talentlane/automation/pkg/registry"
)

// recordingFactory tracks which rules actually fired, in order.
type recordingFactory struct {
	mu    sync.Mutex
	fired []string
}

func (f *recordingFactory) ID() models.ActionType  { return models.ActionUpdateStatus }
func (f *recordingFactory) Schema() map[string]any { return map[string]any{"type": "object"} }

func (f *recordingFactory) Create(parameters map[string]any) (protocol.Action, error) {
	return recordingAction{factory: f, parameters: parameters}, nil
}

func (f *recordingFactory) firedRules() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.fired...)
}

type recordingAction struct {
	factory    *recordingFactory
	parameters map[string]any
}

func (a recordingAction) Execute(_ context.Context, executionCtx models.ExecutionContext, _ *slog.Logger) (map[string]any, error) {
	a.factory.mu.Lock()
	defer a.factory.mu.Unlock()

	a.factory.fired = append(a.factory.fired, executionCtx.RuleID)

	return map[string]any{"done": true}, nil
}

func newDispatcher(t *testing.T) (*RuleDispatcher, *file.Persistence, *recordingFactory) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())

	factory := &recordingFactory{}
	reg := registry.NewRegistry(slog.Default())
	reg.Register(factory)

	exec := executor.NewExecutor(p, reg, locks.NewMemoryLocker(), slog.Default())
	d := NewRuleDispatcher(p, exec, slog.Default())

	return d, p, factory
}

func eventRule(id, eventType string, priority int) *models.Rule {
	conditions := map[string]any{}
	if eventType != "" {
		conditions["event_type"] = eventType
	}

	return &models.Rule{
		ID:         id,
		Name:       "rule " + id,
		Type:       models.RuleTypeStatusUpdate,
		Trigger:    models.TriggerEventBased,
		Priority:   priority,
		Conditions: conditions,
		Actions: []models.Action{
			{Type: models.ActionUpdateStatus, Parameters: map[string]any{}},
		},
		IsActive: true,
	}
}

func proposalAccepted(payload map[string]any) *models.DomainEvent {
	return &models.DomainEvent{
		ID:        "evt-1",
		EventType: models.EventProposalAccepted,
		Payload:   payload,
		Timestamp: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestRuleDispatcher_HandleEvent_MatchesByType(t *testing.T) {
	d, p, factory := newDispatcher(t)

	require.NoError(t, p.Rules().Save(t.Context(), eventRule("matching", models.EventProposalAccepted, 0)))
	require.NoError(t, p.Rules().Save(t.Context(), eventRule("other-type", models.EventInvoicePaid, 0)))

	inactive := eventRule("inactive", models.EventProposalAccepted, 0)
	inactive.IsActive = false
	require.NoError(t, p.Rules().Save(t.Context(), inactive))

	require.NoError(t, d.HandleEvent(t.Context(), proposalAccepted(nil)))

	assert.Equal(t, []string{"matching"}, factory.firedRules())
}

func TestRuleDispatcher_HandleEvent_PriorityOrder(t *testing.T) {
	d, p, factory := newDispatcher(t)

	require.NoError(t, p.Rules().Save(t.Context(), eventRule("low", models.EventProposalAccepted, 1)))
	require.NoError(t, p.Rules().Save(t.Context(), eventRule("high", models.EventProposalAccepted, 10)))
	require.NoError(t, p.Rules().Save(t.Context(), eventRule("mid", models.EventProposalAccepted, 5)))

	require.NoError(t, d.HandleEvent(t.Context(), proposalAccepted(nil)))

	assert.Equal(t, []string{"high", "mid", "low"}, factory.firedRules())
}

func TestRuleDispatcher_HandleEvent_PayloadFilters(t *testing.T) {
	d, p, factory := newDispatcher(t)

	filtered := eventRule("filtered", models.EventProposalAccepted, 0)
	filtered.Conditions["filters"] = map[string]any{
		"all": []any{
			map[string]any{"field": "amount", "operator": "gt", "value": 1000},
		},
	}
	require.NoError(t, p.Rules().Save(t.Context(), filtered))

	require.NoError(t, d.HandleEvent(t.Context(), proposalAccepted(map[string]any{"amount": 500.0})))
	assert.Empty(t, factory.firedRules())

	require.NoError(t, d.HandleEvent(t.Context(), proposalAccepted(map[string]any{"amount": 2500.0})))
	assert.Equal(t, []string{"filtered"}, factory.firedRules())
}

func TestRuleDispatcher_HandleEvent_InvalidEventDropped(t *testing.T) {
	d, p, factory := newDispatcher(t)

	require.NoError(t, p.Rules().Save(t.Context(), eventRule("r-1", models.EventProposalAccepted, 0)))

	// Missing event_type: dropped without redelivery.
	err := d.HandleEvent(t.Context(), &models.DomainEvent{ID: "evt-bad"})
	require.NoError(t, err)
	assert.Empty(t, factory.firedRules())
}

func TestRuleDispatcher_HandleEvent_NoMatches(t *testing.T) {
	d, _, factory := newDispatcher(t)

	require.NoError(t, d.HandleEvent(t.Context(), proposalAccepted(nil)))
	assert.Empty(t, factory.firedRules())
}
