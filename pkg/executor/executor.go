// Package executor runs one automation rule end to end: it re-validates the
// rule, checks supplementary conditions, dispatches the action list, and
// writes exactly one execution log per invocation.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/talentlane/automation/pkg/conditions"
	"github.com/talentlane/automation/pkg/locks"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/otelhelper"
	"github.com/talentlane/automation/pkg/persistence"
	"github.com/talentlane/automation/pkg/registry"
)

const (
	// DefaultActionTimeout bounds a stuck collaborator call so one slow
	// action cannot hold a rule run indefinitely.
	DefaultActionTimeout = 30 * time.Second

	skipReasonInactive   = "rule is not active"
	skipReasonConditions = "supplementary conditions not met"
	skipReasonLocked     = "another run of this rule is in progress"
)

// Executor is the single entry point all triggers converge on: scheduled
// ticks, matched events, and manual operator requests.
type Executor struct {
	persistence   persistence.Persistence
	registry      *registry.Registry
	locker        locks.RuleLocker
	clock         clockwork.Clock
	tracer        trace.Tracer
	logger        *slog.Logger
	actionTimeout time.Duration
}

// Option customizes an Executor.
type Option func(*Executor)

// WithClock injects a clock, used by scheduler tests.
func WithClock(clock clockwork.Clock) Option {
	return func(e *Executor) { e.clock = clock }
}

// WithActionTimeout overrides the per-action dispatch timeout.
func WithActionTimeout(timeout time.Duration) Option {
	return func(e *Executor) { e.actionTimeout = timeout }
}

// WithTracer injects a tracer for per-run spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Executor) { e.tracer = tracer }
}

func NewExecutor(
	persistence persistence.Persistence,
	registry *registry.Registry,
	locker locks.RuleLocker,
	logger *slog.Logger,
	opts ...Option,
) *Executor {
	e := &Executor{
		persistence:   persistence,
		registry:      registry,
		locker:        locker,
		clock:         clockwork.NewRealClock(),
		tracer:        otelhelper.NoopTracer(),
		logger:        logger.With("module", "executor"),
		actionTimeout: DefaultActionTimeout,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Execute runs one rule and returns the execution log it wrote. Manual
// execution bypasses the supplementary condition check: an operator's
// explicit request overrides the rule's own matching policy.
func (e *Executor) Execute(
	ctx context.Context,
	ruleID string,
	triggeredBy models.TriggeredBy,
	event *models.DomainEvent,
) (*models.ExecutionLog, error) {
	startedAt := e.clock.Now().UTC()

	rule, err := e.persistence.Rules().GetByID(ctx, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rule %s: %w", ruleID, err)
	}

	executionCtx := models.ExecutionContext{
		ID:          uuid.New().String(),
		RuleID:      rule.ID,
		TriggeredBy: triggeredBy,
		Event:       event,
		StartedAt:   startedAt,
	}

	logger := e.logger.With(
		"rule_id", rule.ID,
		"execution_id", executionCtx.ID,
		"triggered_by", triggeredBy,
	)

	ctx, span := e.startSpan(ctx, rule, executionCtx)
	defer span.End()

	// Validating: the rule may have been deactivated between matching and
	// execution.
	if !rule.IsActive {
		logger.InfoContext(ctx, "Rule deactivated mid-flight, skipping")

		return e.finish(ctx, logger, rule, executionCtx, nil, skipReasonInactive)
	}

	// ConditionCheck: supplementary conditions beyond the trigger match.
	if triggeredBy != models.TriggeredByManual {
		if expr := rule.Expression(); len(expr) > 0 {
			if !e.conditionsMet(expr, &executionCtx) {
				logger.InfoContext(ctx, "Supplementary conditions unmet, skipping")

				return e.finish(ctx, logger, rule, executionCtx, nil, skipReasonConditions)
			}
		}
	}

	release, acquired, err := e.locker.TryAcquire(ctx, rule.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock for rule %s: %w", rule.ID, err)
	}

	if !acquired {
		logger.WarnContext(ctx, "Rule already running, skipping")

		return e.finish(ctx, logger, rule, executionCtx, nil, skipReasonLocked)
	}

	defer release()

	logger.InfoContext(ctx, "Executing rule", "actions", len(rule.Actions))

	results := e.dispatchActions(ctx, rule, executionCtx, logger)

	return e.finish(ctx, logger, rule, executionCtx, results, "")
}

// dispatchActions runs the action list in order. Each action is attempted
// independently: one failure never aborts its siblings.
func (e *Executor) dispatchActions(
	ctx context.Context,
	rule *models.Rule,
	executionCtx models.ExecutionContext,
	logger *slog.Logger,
) []models.ActionResult {
	results := make([]models.ActionResult, 0, len(rule.Actions))

	for i, action := range rule.Actions {
		output, err := e.dispatchOne(ctx, action, executionCtx, logger)

		result := models.ActionResult{
			ActionType: action.Type,
			Success:    err == nil,
			Output:     output,
		}
		if err != nil {
			result.Error = err.Error()
			logger.ErrorContext(ctx, "Action failed",
				"action_index", i, "action_type", action.Type, "error", err)
		}

		results = append(results, result)
	}

	return results
}

// dispatchOne isolates a single action dispatch: its own timeout, and a
// recover boundary so a panicking handler degrades to a failed result.
func (e *Executor) dispatchOne(
	ctx context.Context,
	action models.Action,
	executionCtx models.ExecutionContext,
	logger *slog.Logger,
) (output map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = fmt.Errorf("action %s panicked: %v", action.Type, r)
		}
	}()

	handler, err := e.registry.Create(action.Type, action.Parameters)
	if err != nil {
		return nil, fmt.Errorf("failed to build action %s: %w", action.Type, err)
	}

	actionCtx, cancel := context.WithTimeout(ctx, e.actionTimeout)
	defer cancel()

	return handler.Execute(actionCtx, executionCtx, logger)
}

// finish writes the execution log and updates the rule's run bookkeeping.
// A nil results slice with a skip reason records a SKIPPED run.
func (e *Executor) finish(
	ctx context.Context,
	logger *slog.Logger,
	rule *models.Rule,
	executionCtx models.ExecutionContext,
	results []models.ActionResult,
	skipReason string,
) (*models.ExecutionLog, error) {
	finishedAt := e.clock.Now().UTC()

	status := models.RunStatusSkipped
	if skipReason == "" {
		status = models.AggregateStatus(results)
	}

	entry := &models.ExecutionLog{
		ID:            uuid.New().String(),
		RuleID:        rule.ID,
		TriggeredBy:   executionCtx.TriggeredBy,
		StartedAt:     executionCtx.StartedAt,
		FinishedAt:    finishedAt,
		Status:        status,
		ActionResults: results,
		DurationMs:    finishedAt.Sub(executionCtx.StartedAt).Milliseconds(),
		SkipReason:    skipReason,
	}

	if err := e.persistence.ExecutionLogs().Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to persist execution log for rule %s: %w", rule.ID, err)
	}

	// Scheduled runs advance next_run_at even when skipped, so a locked or
	// deactivated rule does not come up due again on the very next tick.
	var nextRunAt *time.Time

	if rule.Trigger == models.TriggerScheduled && executionCtx.TriggeredBy == models.TriggeredBySchedule {
		if next, err := rule.NextRunAfter(finishedAt); err == nil {
			nextRunAt = &next
		} else {
			logger.WarnContext(ctx, "Failed to compute next run", "error", err)
		}
	}

	if err := e.persistence.Rules().RecordRun(ctx, rule.ID, finishedAt, nextRunAt, status); err != nil {
		return nil, fmt.Errorf("failed to record run for rule %s: %w", rule.ID, err)
	}

	logger.InfoContext(ctx, "Rule run finished",
		"status", status, "duration_ms", entry.DurationMs)

	return entry, nil
}

func (e *Executor) conditionsMet(expr map[string]any, executionCtx *models.ExecutionContext) bool {
	return conditions.Evaluate(expr, executionCtx.MatchData())
}

func (e *Executor) startSpan(
	ctx context.Context,
	rule *models.Rule,
	executionCtx models.ExecutionContext,
) (context.Context, trace.Span) {
	return otelhelper.StartSpan(ctx, e.tracer, "rule.execute",
		attribute.String(otelhelper.RuleIDKey, rule.ID),
		attribute.String(otelhelper.RuleNameKey, rule.Name),
		attribute.String(otelhelper.TriggeredByKey, string(executionCtx.TriggeredBy)),
		attribute.String(otelhelper.ExecutionIDKey, executionCtx.ID),
	)
}
