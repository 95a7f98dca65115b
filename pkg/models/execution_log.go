package models

import "time"

// TriggeredBy records which entry point submitted a rule for execution.
type TriggeredBy string

const (
	TriggeredBySchedule TriggeredBy = "SCHEDULE"
	TriggeredByEvent    TriggeredBy = "EVENT"
	TriggeredByManual   TriggeredBy = "MANUAL"
)

// RunStatus is the aggregated outcome of one rule run.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "SUCCESS"
	RunStatusFailure RunStatus = "FAILURE"
	RunStatusPartial RunStatus = "PARTIAL"
	RunStatusSkipped RunStatus = "SKIPPED"
)

// ActionResult is the outcome of dispatching a single action.
type ActionResult struct {
	ActionType ActionType     `json:"action_type"`
	Success    bool           `json:"success"`
	Output     map[string]any `json:"output,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// ExecutionLog is the durable record of one rule run. Immutable after write;
// many logs reference one rule and survive the rule's soft deletion.
type ExecutionLog struct {
	ID            string         `json:"id"`
	RuleID        string         `json:"rule_id"`
	TriggeredBy   TriggeredBy    `json:"triggered_by"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	Status        RunStatus      `json:"status"`
	ActionResults []ActionResult `json:"action_results,omitempty"`
	DurationMs    int64          `json:"duration_ms"`
	SkipReason    string         `json:"skip_reason,omitempty"`
}

// AggregateStatus folds per-action outcomes into the run status: SUCCESS when
// all actions succeeded, FAILURE when all failed, PARTIAL otherwise.
func AggregateStatus(results []ActionResult) RunStatus {
	if len(results) == 0 {
		return RunStatusSuccess
	}

	succeeded := 0

	for _, result := range results {
		if result.Success {
			succeeded++
		}
	}

	switch succeeded {
	case len(results):
		return RunStatusSuccess
	case 0:
		return RunStatusFailure
	default:
		return RunStatusPartial
	}
}

// RuleMetrics aggregates execution outcomes for a single rule.
type RuleMetrics struct {
	RuleID            string    `json:"rule_id"`
	TotalRuns         int64     `json:"total_runs"`
	Successes         int64     `json:"successes"`
	Failures          int64     `json:"failures"`
	Partials          int64     `json:"partials"`
	Skips             int64     `json:"skips"`
	SuccessRate       float64   `json:"success_rate"`
	AvgDurationMs     float64   `json:"avg_duration_ms"`
	LastRunAt         time.Time `json:"last_run_at,omitzero"`
	LastFailureReason string    `json:"last_failure_reason,omitempty"`
}

// SystemMetrics aggregates execution outcomes across all rules.
type SystemMetrics struct {
	TotalRules    int64   `json:"total_rules"`
	ActiveRules   int64   `json:"active_rules"`
	TotalRuns     int64   `json:"total_runs"`
	Successes     int64   `json:"successes"`
	Failures      int64   `json:"failures"`
	Partials      int64   `json:"partials"`
	Skips         int64   `json:"skips"`
	SuccessRate   float64 `json:"success_rate"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}
