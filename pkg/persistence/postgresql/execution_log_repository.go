package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/talentlane/automation/pkg/models"
)

const executionLogColumns = `
	id
  , rule_id
  , triggered_by
  , started_at
  , finished_at
  , status
  , action_results
  , duration_ms
  , skip_reason
`

// ExecutionLogRepository handles execution log database operations.
type ExecutionLogRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewExecutionLogRepository creates a new execution log repository.
func NewExecutionLogRepository(db *sql.DB, logger *slog.Logger) *ExecutionLogRepository {
	return &ExecutionLogRepository{db: db, logger: logger}
}

// Save persists an execution log. Logs are immutable after write.
func (r *ExecutionLogRepository) Save(ctx context.Context, log *models.ExecutionLog) error {
	resultsJSON, err := json.Marshal(log.ActionResults)
	if err != nil {
		return fmt.Errorf("failed to marshal action results: %w", err)
	}

	query := `
		INSERT INTO execution_logs (
			id, rule_id, triggered_by, started_at, finished_at, status,
			action_results, duration_ms, skip_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		log.ID, log.RuleID, log.TriggeredBy, log.StartedAt, log.FinishedAt,
		log.Status, resultsJSON, log.DurationMs, nullableString(log.SkipReason),
	)
	if err != nil {
		return fmt.Errorf("failed to save execution log %s: %w", log.ID, err)
	}

	return nil
}

// ByRule returns the most recent logs for one rule, newest first.
func (r *ExecutionLogRepository) ByRule(ctx context.Context, ruleID string, limit int) ([]*models.ExecutionLog, error) {
	query := `
		SELECT ` + executionLogColumns + `
		FROM execution_logs
		WHERE rule_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	return r.queryLogs(ctx, query, ruleID, normalizeLimit(limit))
}

// Recent returns the most recent logs across all rules, newest first.
func (r *ExecutionLogRepository) Recent(ctx context.Context, limit int) ([]*models.ExecutionLog, error) {
	query := `
		SELECT ` + executionLogColumns + `
		FROM execution_logs
		ORDER BY started_at DESC
		LIMIT $1
	`

	return r.queryLogs(ctx, query, normalizeLimit(limit))
}

// RuleMetrics aggregates execution outcomes for a single rule in SQL.
func (r *ExecutionLogRepository) RuleMetrics(ctx context.Context, ruleID string) (*models.RuleMetrics, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status != 'SKIPPED')
		  , COUNT(*) FILTER (WHERE status = 'SUCCESS')
		  , COUNT(*) FILTER (WHERE status = 'FAILURE')
		  , COUNT(*) FILTER (WHERE status = 'PARTIAL')
		  , COUNT(*) FILTER (WHERE status = 'SKIPPED')
		  , COALESCE(AVG(duration_ms) FILTER (WHERE status != 'SKIPPED'), 0)
		  , MAX(started_at) FILTER (WHERE status != 'SKIPPED')
		FROM execution_logs
		WHERE rule_id = $1
	`

	metrics := &models.RuleMetrics{RuleID: ruleID}

	var lastRunAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, ruleID).Scan(
		&metrics.TotalRuns, &metrics.Successes, &metrics.Failures,
		&metrics.Partials, &metrics.Skips, &metrics.AvgDurationMs, &lastRunAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate metrics for rule %s: %w", ruleID, err)
	}

	if lastRunAt.Valid {
		metrics.LastRunAt = lastRunAt.Time
	}

	if metrics.TotalRuns > 0 {
		metrics.SuccessRate = float64(metrics.Successes) / float64(metrics.TotalRuns)
	}

	reason, err := r.lastFailureReason(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	metrics.LastFailureReason = reason

	return metrics, nil
}

// SystemMetrics aggregates execution outcomes across all rules. The
// rule-count fields are filled by callers holding a rule repository.
func (r *ExecutionLogRepository) SystemMetrics(ctx context.Context) (*models.SystemMetrics, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status != 'SKIPPED')
		  , COUNT(*) FILTER (WHERE status = 'SUCCESS')
		  , COUNT(*) FILTER (WHERE status = 'FAILURE')
		  , COUNT(*) FILTER (WHERE status = 'PARTIAL')
		  , COUNT(*) FILTER (WHERE status = 'SKIPPED')
		  , COALESCE(AVG(duration_ms) FILTER (WHERE status != 'SKIPPED'), 0)
		FROM execution_logs
	`

	metrics := &models.SystemMetrics{}

	err := r.db.QueryRowContext(ctx, query).Scan(
		&metrics.TotalRuns, &metrics.Successes, &metrics.Failures,
		&metrics.Partials, &metrics.Skips, &metrics.AvgDurationMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate system metrics: %w", err)
	}

	if metrics.TotalRuns > 0 {
		metrics.SuccessRate = float64(metrics.Successes) / float64(metrics.TotalRuns)
	}

	return metrics, nil
}

// lastFailureReason returns the first action error of the newest failed or
// partial run, if any.
func (r *ExecutionLogRepository) lastFailureReason(ctx context.Context, ruleID string) (string, error) {
	query := `
		SELECT action_results
		FROM execution_logs
		WHERE rule_id = $1 AND status IN ('FAILURE', 'PARTIAL')
		ORDER BY started_at DESC
		LIMIT 1
	`

	var resultsJSON []byte

	err := r.db.QueryRowContext(ctx, query, ruleID).Scan(&resultsJSON)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}

		return "", fmt.Errorf("failed to query last failure for rule %s: %w", ruleID, err)
	}

	var results []models.ActionResult

	if err := json.Unmarshal(resultsJSON, &results); err != nil {
		return "", fmt.Errorf("failed to unmarshal action results: %w", err)
	}

	for _, result := range results {
		if !result.Success && result.Error != "" {
			return result.Error, nil
		}
	}

	return "", nil
}

func (r *ExecutionLogRepository) queryLogs(ctx context.Context, query string, args ...any) ([]*models.ExecutionLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query execution logs: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	logs := make([]*models.ExecutionLog, 0)

	for rows.Next() {
		var (
			log         models.ExecutionLog
			resultsJSON []byte
			skipReason  sql.NullString
		)

		err := rows.Scan(
			&log.ID, &log.RuleID, &log.TriggeredBy, &log.StartedAt,
			&log.FinishedAt, &log.Status, &resultsJSON, &log.DurationMs,
			&skipReason,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution log: %w", err)
		}

		if len(resultsJSON) > 0 {
			if err := json.Unmarshal(resultsJSON, &log.ActionResults); err != nil {
				return nil, fmt.Errorf("failed to unmarshal action results: %w", err)
			}
		}

		log.SkipReason = skipReason.String

		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating execution logs: %w", err)
	}

	return logs, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return 100
	}

	return limit
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
