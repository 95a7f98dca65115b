package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/talentlane/automation/pkg/models"
)

// ExecutionLogRepository stores execution logs as one JSON document per run
// under <root>/executions. Metrics are aggregated in memory on read, which is
// adequate for the development-scale data this backend targets.
type ExecutionLogRepository struct {
	root string
}

// NewExecutionLogRepository creates a new execution log repository.
func NewExecutionLogRepository(root string) *ExecutionLogRepository {
	return &ExecutionLogRepository{root: root}
}

// Save persists an execution log to the file system.
func (er *ExecutionLogRepository) Save(_ context.Context, log *models.ExecutionLog) error {
	dir := path.Join(er.root, "executions")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create executions directory: %w", err)
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal execution log %s: %w", log.ID, err)
	}

	return os.WriteFile(path.Join(dir, log.ID+".json"), data, 0600)
}

// ByRule returns the most recent logs for one rule, newest first.
func (er *ExecutionLogRepository) ByRule(ctx context.Context, ruleID string, limit int) ([]*models.ExecutionLog, error) {
	logs, err := er.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]*models.ExecutionLog, 0)

	for _, log := range logs {
		if log.RuleID == ruleID {
			matched = append(matched, log)
		}
	}

	return truncate(matched, limit), nil
}

// Recent returns the most recent logs across all rules, newest first.
func (er *ExecutionLogRepository) Recent(ctx context.Context, limit int) ([]*models.ExecutionLog, error) {
	logs, err := er.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	return truncate(logs, limit), nil
}

// RuleMetrics aggregates execution outcomes for a single rule.
func (er *ExecutionLogRepository) RuleMetrics(ctx context.Context, ruleID string) (*models.RuleMetrics, error) {
	logs, err := er.ByRule(ctx, ruleID, 0)
	if err != nil {
		return nil, err
	}

	metrics := &models.RuleMetrics{RuleID: ruleID}

	var totalDuration int64

	for _, log := range logs {
		switch log.Status {
		case models.RunStatusSuccess:
			metrics.Successes++
		case models.RunStatusFailure:
			metrics.Failures++
		case models.RunStatusPartial:
			metrics.Partials++
		case models.RunStatusSkipped:
			metrics.Skips++

			continue
		}

		metrics.TotalRuns++
		totalDuration += log.DurationMs

		if log.StartedAt.After(metrics.LastRunAt) {
			metrics.LastRunAt = log.StartedAt
		}
	}

	if metrics.TotalRuns > 0 {
		metrics.SuccessRate = float64(metrics.Successes) / float64(metrics.TotalRuns)
		metrics.AvgDurationMs = float64(totalDuration) / float64(metrics.TotalRuns)
	}

	// Logs are newest first, so the first failure carries the latest reason.
	for _, log := range logs {
		if log.Status != models.RunStatusFailure && log.Status != models.RunStatusPartial {
			continue
		}

		for _, result := range log.ActionResults {
			if !result.Success && result.Error != "" {
				metrics.LastFailureReason = result.Error

				break
			}
		}

		if metrics.LastFailureReason != "" {
			break
		}
	}

	return metrics, nil
}

// SystemMetrics aggregates execution outcomes across all rules. The
// rule-count fields are filled by callers holding a rule repository.
func (er *ExecutionLogRepository) SystemMetrics(ctx context.Context) (*models.SystemMetrics, error) {
	logs, err := er.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	metrics := &models.SystemMetrics{}

	var totalDuration int64

	for _, log := range logs {
		switch log.Status {
		case models.RunStatusSuccess:
			metrics.Successes++
		case models.RunStatusFailure:
			metrics.Failures++
		case models.RunStatusPartial:
			metrics.Partials++
		case models.RunStatusSkipped:
			metrics.Skips++

			continue
		}

		metrics.TotalRuns++
		totalDuration += log.DurationMs
	}

	if metrics.TotalRuns > 0 {
		metrics.SuccessRate = float64(metrics.Successes) / float64(metrics.TotalRuns)
		metrics.AvgDurationMs = float64(totalDuration) / float64(metrics.TotalRuns)
	}

	return metrics, nil
}

func (er *ExecutionLogRepository) loadAll(_ context.Context) ([]*models.ExecutionLog, error) {
	root := os.DirFS(path.Join(er.root, "executions"))

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list execution log files: %w", err)
	}

	logs := make([]*models.ExecutionLog, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		filePath := filepath.Clean(path.Join(er.root, "executions", file))

		body, err := os.ReadFile(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}

			return nil, fmt.Errorf("failed to fetch execution log %s: %w", file, err)
		}

		var log models.ExecutionLog

		if err := json.Unmarshal(body, &log); err != nil {
			return nil, fmt.Errorf("failed to unmarshal execution log %s: %w", file, err)
		}

		logs = append(logs, &log)
	}

	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].StartedAt.After(logs[j].StartedAt)
	})

	return logs, nil
}

func truncate(logs []*models.ExecutionLog, limit int) []*models.ExecutionLog {
	if limit > 0 && len(logs) > limit {
		return logs[:limit]
	}

	return logs
}
