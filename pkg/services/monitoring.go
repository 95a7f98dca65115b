package services

import (
	"context"
	"fmt"

	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/persistence"
)

// Monitoring exposes execution logs and aggregated metrics.
type Monitoring struct {
	persistence persistence.Persistence
}

// NewMonitoring creates a new monitoring service.
func NewMonitoring(persistence persistence.Persistence) *Monitoring {
	return &Monitoring{persistence: persistence}
}

// RecentLogs returns the most recent execution logs across all rules.
func (s *Monitoring) RecentLogs(ctx context.Context, limit int) ([]*models.ExecutionLog, error) {
	logs, err := s.persistence.ExecutionLogs().Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent logs: %w", err)
	}

	return logs, nil
}

// RuleLogs returns the most recent execution logs for one rule.
func (s *Monitoring) RuleLogs(ctx context.Context, ruleID string, limit int) ([]*models.ExecutionLog, error) {
	if _, err := s.persistence.Rules().GetByID(ctx, ruleID); err != nil {
		return nil, err
	}

	logs, err := s.persistence.ExecutionLogs().ByRule(ctx, ruleID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logs for rule %s: %w", ruleID, err)
	}

	return logs, nil
}

// RuleMetrics returns aggregated execution metrics for one rule.
func (s *Monitoring) RuleMetrics(ctx context.Context, ruleID string) (*models.RuleMetrics, error) {
	if _, err := s.persistence.Rules().GetByID(ctx, ruleID); err != nil {
		return nil, err
	}

	metrics, err := s.persistence.ExecutionLogs().RuleMetrics(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate metrics for rule %s: %w", ruleID, err)
	}

	return metrics, nil
}

// SystemMetrics returns execution metrics across all rules together with the
// current rule counts.
func (s *Monitoring) SystemMetrics(ctx context.Context) (*models.SystemMetrics, error) {
	metrics, err := s.persistence.ExecutionLogs().SystemMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate system metrics: %w", err)
	}

	rules, err := s.persistence.Rules().List(ctx, persistence.RuleFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to count rules: %w", err)
	}

	metrics.TotalRules = int64(len(rules))

	for _, rule := range rules {
		if rule.IsActive {
			metrics.ActiveRules++
		}
	}

	return metrics, nil
}
