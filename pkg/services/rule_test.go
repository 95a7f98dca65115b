package services_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentlane/automation/pkg/cmd"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/persistence"
	"github.com/talentlane/automation/pkg/persistence/file"
	"github.com/talentlane/automation/pkg/registry"
	"github.com/talentlane/automation/pkg/services"
)

func newRuleService(t *testing.T) (*services.Rule, *file.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())

	collabs := cmd.NewCollaborators(slog.Default(), p, cmd.SMTPConfig{})
	reg := registry.Default(slog.Default(), collabs)

	return services.NewRule(p, reg), p
}

func validScheduledRule() *models.Rule {
	return &models.Rule{
		Name:       "weekly digest",
		Type:       models.RuleTypeFollowUp,
		Trigger:    models.TriggerScheduled,
		Conditions: map[string]any{"interval_minutes": 60.0},
		Actions: []models.Action{
			{Type: models.ActionSendEmail, Parameters: map[string]any{
				"to":      "{{event.client_email}}",
				"subject": "Weekly digest",
				"html":    "<p>Hello</p>",
			}},
		},
		IsActive: true,
	}
}

func TestRule_Create(t *testing.T) {
	svc, p := newRuleService(t)

	before := time.Now().UTC()

	created, err := svc.Create(t.Context(), validScheduledRule())
	require.NoError(t, err)

	// Scheduled rules get their first next_run_at at creation.
	require.NotNil(t, created.NextRunAt)
	assert.WithinDuration(t, before.Add(time.Hour), *created.NextRunAt, 5*time.Second)

	stored, err := p.Rules().GetByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "weekly digest", stored.Name)
}

func TestRule_Create_Invalid(t *testing.T) {
	svc, _ := newRuleService(t)

	tests := []struct {
		name   string
		mutate func(*models.Rule)
	}{
		{
			name:   "no actions",
			mutate: func(r *models.Rule) { r.Actions = nil },
		},
		{
			name:   "unknown trigger",
			mutate: func(r *models.Rule) { r.Trigger = "SOMETIMES" },
		},
		{
			name:   "unknown action type",
			mutate: func(r *models.Rule) { r.Actions[0].Type = "LAUNCH_ROCKET" },
		},
		{
			name:   "no schedule",
			mutate: func(r *models.Rule) { r.Conditions = map[string]any{} },
		},
		{
			name: "action parameters fail schema",
			mutate: func(r *models.Rule) {
				r.Actions[0].Parameters = map[string]any{"subject": "no recipient"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := validScheduledRule()
			tt.mutate(rule)

			_, err := svc.Create(t.Context(), rule)
			require.Error(t, err)
			assert.True(t, services.IsValidationError(err), "expected validation error, got %v", err)
		})
	}
}

func TestRule_Create_Nil(t *testing.T) {
	svc, _ := newRuleService(t)

	_, err := svc.Create(t.Context(), nil)
	assert.ErrorIs(t, err, services.ErrRuleNil)
}

func TestRule_Update(t *testing.T) {
	svc, _ := newRuleService(t)

	created, err := svc.Create(t.Context(), validScheduledRule())
	require.NoError(t, err)

	updated := validScheduledRule()
	updated.Name = "renamed"
	updated.Conditions = map[string]any{"interval_minutes": 15.0}

	result, err := svc.Update(t.Context(), created.ID, updated)
	require.NoError(t, err)

	assert.Equal(t, created.ID, result.ID)
	assert.Equal(t, "renamed", result.Name)

	// The shorter interval reflects in the recomputed next run.
	require.NotNil(t, result.NextRunAt)
	assert.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), *result.NextRunAt, 5*time.Second)
}

func TestRule_Update_TriggerChangeClearsSchedule(t *testing.T) {
	svc, _ := newRuleService(t)

	created, err := svc.Create(t.Context(), validScheduledRule())
	require.NoError(t, err)

	updated := validScheduledRule()
	updated.Trigger = models.TriggerEventBased
	updated.Conditions = map[string]any{"event_type": models.EventInvoicePaid}

	result, err := svc.Update(t.Context(), created.ID, updated)
	require.NoError(t, err)
	assert.Nil(t, result.NextRunAt)
}

func TestRule_Update_NotFound(t *testing.T) {
	svc, _ := newRuleService(t)

	_, err := svc.Update(t.Context(), "ghost", validScheduledRule())
	assert.True(t, persistence.IsRuleNotFound(err))
}

func TestRule_SetActive_ReactivationRecomputesSchedule(t *testing.T) {
	svc, p := newRuleService(t)

	created, err := svc.Create(t.Context(), validScheduledRule())
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(t.Context(), created.ID, false))

	rule, err := p.Rules().GetByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.False(t, rule.IsActive)

	// Park the stored next_run_at in the past, as a long pause would.
	stale := time.Now().UTC().Add(-24 * time.Hour)
	rule.NextRunAt = &stale
	require.NoError(t, p.Rules().Save(t.Context(), rule))

	require.NoError(t, svc.SetActive(t.Context(), created.ID, true))

	rule, err = p.Rules().GetByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.True(t, rule.IsActive)
	assert.True(t, rule.NextRunAt.After(time.Now().UTC()), "reactivation must not cause an immediate burst")
}

func TestRule_Delete(t *testing.T) {
	svc, _ := newRuleService(t)

	created, err := svc.Create(t.Context(), validScheduledRule())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(t.Context(), created.ID))

	_, err = svc.FetchByID(t.Context(), created.ID)
	assert.True(t, persistence.IsRuleNotFound(err))
}

func TestRule_HealthCheck(t *testing.T) {
	svc, _ := newRuleService(t)

	message, healthy := svc.HealthCheck(t.Context())
	assert.True(t, healthy)
	assert.Contains(t, message, "healthy")
}
