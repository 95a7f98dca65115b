package file

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentlane/automation/pkg/models"
)

func executionLog(id, ruleID string, status models.RunStatus, startedAt time.Time, durationMs int64) *models.ExecutionLog {
	return &models.ExecutionLog{
		ID:          id,
		RuleID:      ruleID,
		TriggeredBy: models.TriggeredBySchedule,
		StartedAt:   startedAt,
		FinishedAt:  startedAt.Add(time.Duration(durationMs) * time.Millisecond),
		Status:      status,
		DurationMs:  durationMs,
	}
}

func TestExecutionLogRepository_ByRuleAndRecent(t *testing.T) {
	repo := NewExecutionLogRepository(t.TempDir())

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(t.Context(), executionLog("l-1", "r-1", models.RunStatusSuccess, base, 10)))
	require.NoError(t, repo.Save(t.Context(), executionLog("l-2", "r-1", models.RunStatusFailure, base.Add(time.Minute), 20)))
	require.NoError(t, repo.Save(t.Context(), executionLog("l-3", "r-2", models.RunStatusSuccess, base.Add(2*time.Minute), 30)))

	byRule, err := repo.ByRule(t.Context(), "r-1", 10)
	require.NoError(t, err)
	require.Len(t, byRule, 2)

	// Newest first.
	assert.Equal(t, "l-2", byRule[0].ID)
	assert.Equal(t, "l-1", byRule[1].ID)

	recent, err := repo.Recent(t.Context(), 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "l-3", recent[0].ID)
	assert.Equal(t, "l-2", recent[1].ID)
}

func TestExecutionLogRepository_RuleMetrics(t *testing.T) {
	repo := NewExecutionLogRepository(t.TempDir())

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(t.Context(), executionLog("l-1", "r-1", models.RunStatusSuccess, base, 100)))
	require.NoError(t, repo.Save(t.Context(), executionLog("l-2", "r-1", models.RunStatusSuccess, base.Add(time.Minute), 200)))

	failed := executionLog("l-3", "r-1", models.RunStatusFailure, base.Add(2*time.Minute), 300)
	failed.ActionResults = []models.ActionResult{
		{ActionType: models.ActionSendEmail, Success: false, Error: "smtp refused"},
	}
	require.NoError(t, repo.Save(t.Context(), failed))

	skipped := executionLog("l-4", "r-1", models.RunStatusSkipped, base.Add(3*time.Minute), 0)
	skipped.SkipReason = "rule is not active"
	require.NoError(t, repo.Save(t.Context(), skipped))

	// Another rule's runs do not leak in.
	require.NoError(t, repo.Save(t.Context(), executionLog("l-9", "r-2", models.RunStatusFailure, base, 50)))

	metrics, err := repo.RuleMetrics(t.Context(), "r-1")
	require.NoError(t, err)

	assert.Equal(t, int64(3), metrics.TotalRuns)
	assert.Equal(t, int64(2), metrics.Successes)
	assert.Equal(t, int64(1), metrics.Failures)
	assert.Equal(t, int64(1), metrics.Skips)
	assert.InDelta(t, 2.0/3.0, metrics.SuccessRate, 0.001)
	assert.InDelta(t, 200.0, metrics.AvgDurationMs, 0.001)
	assert.Equal(t, "smtp refused", metrics.LastFailureReason)
	assert.Equal(t, base.Add(2*time.Minute), metrics.LastRunAt)
}

func TestExecutionLogRepository_SystemMetrics(t *testing.T) {
	repo := NewExecutionLogRepository(t.TempDir())

	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(t.Context(), executionLog("l-1", "r-1", models.RunStatusSuccess, base, 100)))
	require.NoError(t, repo.Save(t.Context(), executionLog("l-2", "r-2", models.RunStatusPartial, base, 300)))
	require.NoError(t, repo.Save(t.Context(), executionLog("l-3", "r-3", models.RunStatusSkipped, base, 0)))

	metrics, err := repo.SystemMetrics(t.Context())
	require.NoError(t, err)

	assert.Equal(t, int64(2), metrics.TotalRuns)
	assert.Equal(t, int64(1), metrics.Successes)
	assert.Equal(t, int64(1), metrics.Partials)
	assert.Equal(t, int64(1), metrics.Skips)
	assert.InDelta(t, 0.5, metrics.SuccessRate, 0.001)
	assert.InDelta(t, 200.0, metrics.AvgDurationMs, 0.001)

	// Rule counts are the caller's responsibility.
	assert.Zero(t, metrics.TotalRules)
}

func TestExecutionLogRepository_EmptyMetrics(t *testing.T) {
	repo := NewExecutionLogRepository(t.TempDir())

	metrics, err := repo.RuleMetrics(t.Context(), "r-none")
	require.NoError(t, err)
	assert.Zero(t, metrics.TotalRuns)
	assert.Zero(t, metrics.SuccessRate)
}
