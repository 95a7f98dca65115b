package file

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/persistence"
)

func scheduledRule(id string, priority int, nextRunAt time.Time) *models.Rule {
	return &models.Rule{
		ID:       id,
		Name:     "rule " + id,
		Type:     models.RuleTypeReminder,
		Trigger:  models.TriggerScheduled,
		Priority: priority,
		IsActive: true,
		Conditions: map[string]any{
			"interval_minutes": 30.0,
		},
		Actions: []models.Action{
			{Type: models.ActionCreateReminder, Parameters: map[string]any{
				"user_id": "u-1",
				"title":   "follow up",
			}},
		},
		NextRunAt: &nextRunAt,
	}
}

func TestRuleRepository_SaveAndGetByID(t *testing.T) {
	repo := NewRuleRepository(t.TempDir())

	rule := scheduledRule("r-1", 0, time.Now().UTC())
	require.NoError(t, repo.Save(t.Context(), rule))

	assert.False(t, rule.CreatedAt.IsZero())
	assert.False(t, rule.UpdatedAt.IsZero())

	fetched, err := repo.GetByID(t.Context(), "r-1")
	require.NoError(t, err)
	assert.Equal(t, rule.Name, fetched.Name)
	assert.Equal(t, models.TriggerScheduled, fetched.Trigger)
	require.NotNil(t, fetched.NextRunAt)
}

func TestRuleRepository_GetByID_NotFound(t *testing.T) {
	repo := NewRuleRepository(t.TempDir())

	_, err := repo.GetByID(t.Context(), "ghost")
	assert.True(t, persistence.IsRuleNotFound(err))
}

func TestRuleRepository_List_Filters(t *testing.T) {
	repo := NewRuleRepository(t.TempDir())

	now := time.Now().UTC()

	active := scheduledRule("r-1", 5, now)
	require.NoError(t, repo.Save(t.Context(), active))

	inactive := scheduledRule("r-2", 1, now)
	inactive.IsActive = false
	require.NoError(t, repo.Save(t.Context(), inactive))

	event := scheduledRule("r-3", 9, now)
	event.Trigger = models.TriggerEventBased
	event.Conditions = map[string]any{"event_type": models.EventJobCreated}
	require.NoError(t, repo.Save(t.Context(), event))

	all, err := repo.List(t.Context(), persistence.RuleFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	// Ordered by priority descending.
	assert.Equal(t, "r-3", all[0].ID)
	assert.Equal(t, "r-1", all[1].ID)

	isActive := true
	activeOnly, err := repo.List(t.Context(), persistence.RuleFilter{IsActive: &isActive})
	require.NoError(t, err)
	assert.Len(t, activeOnly, 2)

	trigger := models.TriggerEventBased
	eventOnly, err := repo.List(t.Context(), persistence.RuleFilter{Trigger: &trigger})
	require.NoError(t, err)
	require.Len(t, eventOnly, 1)
	assert.Equal(t, "r-3", eventOnly[0].ID)
}

func TestRuleRepository_Due(t *testing.T) {
	repo := NewRuleRepository(t.TempDir())

	now := time.Now().UTC()

	overdue := scheduledRule("r-overdue", 1, now.Add(-10*time.Minute))
	require.NoError(t, repo.Save(t.Context(), overdue))

	urgent := scheduledRule("r-urgent", 10, now.Add(-1*time.Minute))
	require.NoError(t, repo.Save(t.Context(), urgent))

	future := scheduledRule("r-future", 20, now.Add(10*time.Minute))
	require.NoError(t, repo.Save(t.Context(), future))

	paused := scheduledRule("r-paused", 30, now.Add(-10*time.Minute))
	paused.IsActive = false
	require.NoError(t, repo.Save(t.Context(), paused))

	manual := scheduledRule("r-manual", 40, now.Add(-10*time.Minute))
	manual.Trigger = models.TriggerManual
	manual.Conditions = nil
	require.NoError(t, repo.Save(t.Context(), manual))

	due, err := repo.Due(t.Context(), now)
	require.NoError(t, err)
	require.Len(t, due, 2)

	// Higher priority first.
	assert.Equal(t, "r-urgent", due[0].ID)
	assert.Equal(t, "r-overdue", due[1].ID)
}

func TestRuleRepository_Delete_SoftDeletes(t *testing.T) {
	repo := NewRuleRepository(t.TempDir())

	rule := scheduledRule("r-1", 0, time.Now().UTC())
	require.NoError(t, repo.Save(t.Context(), rule))

	require.NoError(t, repo.Delete(t.Context(), "r-1"))

	_, err := repo.GetByID(t.Context(), "r-1")
	assert.True(t, persistence.IsRuleNotFound(err))

	all, err := repo.List(t.Context(), persistence.RuleFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)

	// Deleting twice is a no-op.
	assert.NoError(t, repo.Delete(t.Context(), "r-1"))
}

func TestRuleRepository_SetActive(t *testing.T) {
	repo := NewRuleRepository(t.TempDir())

	rule := scheduledRule("r-1", 0, time.Now().UTC())
	require.NoError(t, repo.Save(t.Context(), rule))

	require.NoError(t, repo.SetActive(t.Context(), "r-1", false))

	fetched, err := repo.GetByID(t.Context(), "r-1")
	require.NoError(t, err)
	assert.False(t, fetched.IsActive)
}

func TestRuleRepository_RecordRun(t *testing.T) {
	repo := NewRuleRepository(t.TempDir())

	rule := scheduledRule("r-1", 0, time.Now().UTC())
	require.NoError(t, repo.Save(t.Context(), rule))

	ranAt := time.Now().UTC()
	next := ranAt.Add(30 * time.Minute)

	require.NoError(t, repo.RecordRun(t.Context(), "r-1", ranAt, &next, models.RunStatusSuccess))
	require.NoError(t, repo.RecordRun(t.Context(), "r-1", ranAt, nil, models.RunStatusFailure))
	require.NoError(t, repo.RecordRun(t.Context(), "r-1", ranAt, nil, models.RunStatusSkipped))

	fetched, err := repo.GetByID(t.Context(), "r-1")
	require.NoError(t, err)

	assert.Equal(t, int64(2), fetched.RunCount)
	assert.Equal(t, int64(1), fetched.SuccessCount)
	assert.Equal(t, int64(1), fetched.FailureCount)

	require.NotNil(t, fetched.LastRunAt)
	require.NotNil(t, fetched.NextRunAt)
	assert.WithinDuration(t, next, *fetched.NextRunAt, time.Second)
}
