package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/persistence"
	"github.com/talentlane/automation/pkg/persistence/file"
	"github.com/talentlane/automation/pkg/services"
)

func seedLog(t *testing.T, p *file.Persistence, id, ruleID string, status models.RunStatus, startedAt time.Time) {
	t.Helper()

	require.NoError(t, p.ExecutionLogs().Save(t.Context(), &models.ExecutionLog{
		ID:          id,
		RuleID:      ruleID,
		TriggeredBy: models.TriggeredBySchedule,
		StartedAt:   startedAt,
		FinishedAt:  startedAt.Add(100 * time.Millisecond),
		Status:      status,
		DurationMs:  100,
	}))
}

func TestMonitoring_RecentLogs(t *testing.T) {
	svc, p := newRuleService(t)
	monitoring := services.NewMonitoring(p)

	created, err := svc.Create(t.Context(), validScheduledRule())
	require.NoError(t, err)

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	seedLog(t, p, "log-1", created.ID, models.RunStatusSuccess, base)
	seedLog(t, p, "log-2", created.ID, models.RunStatusFailure, base.Add(time.Minute))

	logs, err := monitoring.RecentLogs(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	// Newest first.
	assert.Equal(t, "log-2", logs[0].ID)
}

func TestMonitoring_RuleLogs_UnknownRule(t *testing.T) {
	_, p := newRuleService(t)
	monitoring := services.NewMonitoring(p)

	_, err := monitoring.RuleLogs(t.Context(), "ghost", 10)
	assert.True(t, persistence.IsRuleNotFound(err))
}

func TestMonitoring_RuleMetrics(t *testing.T) {
	svc, p := newRuleService(t)
	monitoring := services.NewMonitoring(p)

	created, err := svc.Create(t.Context(), validScheduledRule())
	require.NoError(t, err)

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	seedLog(t, p, "log-1", created.ID, models.RunStatusSuccess, base)
	seedLog(t, p, "log-2", created.ID, models.RunStatusFailure, base.Add(time.Minute))

	metrics, err := monitoring.RuleMetrics(t.Context(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), metrics.TotalRuns)
	assert.InDelta(t, 0.5, metrics.SuccessRate, 0.001)
}

func TestMonitoring_SystemMetrics_RuleCounts(t *testing.T) {
	svc, p := newRuleService(t)
	monitoring := services.NewMonitoring(p)

	first, err := svc.Create(t.Context(), validScheduledRule())
	require.NoError(t, err)

	second, err := svc.Create(t.Context(), validScheduledRule())
	require.NoError(t, err)
	require.NoError(t, svc.SetActive(t.Context(), second.ID, false))

	seedLog(t, p, "log-1", first.ID, models.RunStatusSuccess, time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC))

	metrics, err := monitoring.SystemMetrics(t.Context())
	require.NoError(t, err)

	assert.Equal(t, int64(2), metrics.TotalRules)
	assert.Equal(t, int64(1), metrics.ActiveRules)
	assert.Equal(t, int64(1), metrics.TotalRuns)
}
