package eventbus

import (
	"context"
	"log/slog"
	"sort"

	"github.com/talentlane/automation/pkg/conditions"
	"github.com/talentlane/automation/pkg/executor"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/persistence"
)

// RuleDispatcher consumes domain events and executes every active
// EVENT_BASED rule whose trigger conditions match.
type RuleDispatcher struct {
	persistence persistence.Persistence
	executor    *executor.Executor
	logger      *slog.Logger
}

func NewRuleDispatcher(
	persistence persistence.Persistence,
	executor *executor.Executor,
	logger *slog.Logger,
) *RuleDispatcher {
	return &RuleDispatcher{
		persistence: persistence,
		executor:    executor,
		logger:      logger.With("module", "event_dispatcher"),
	}
}

// HandleEvent matches one event against all active EVENT_BASED rules and
// executes the matches in priority order. It always returns nil: execution
// failures are recorded in the rules' own logs, and redelivering the event
// would re-run rules that already fired.
func (d *RuleDispatcher) HandleEvent(ctx context.Context, event *models.DomainEvent) error {
	logger := d.logger.With("event_id", event.ID, "event_type", event.EventType)

	if err := event.Validate(); err != nil {
		logger.ErrorContext(ctx, "Dropping invalid domain event", "error", err)

		return nil
	}

	matches, err := d.matchRules(ctx, event)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to match rules for event", "error", err)

		return nil
	}

	if len(matches) == 0 {
		logger.DebugContext(ctx, "No rules matched event")

		return nil
	}

	logger.InfoContext(ctx, "Event matched rules", "count", len(matches))

	for _, rule := range matches {
		d.executeOne(ctx, rule, event)
	}

	return nil
}

func (d *RuleDispatcher) matchRules(ctx context.Context, event *models.DomainEvent) ([]*models.Rule, error) {
	trigger := models.TriggerEventBased
	active := true

	rules, err := d.persistence.Rules().List(ctx, persistence.RuleFilter{
		Trigger:  &trigger,
		IsActive: &active,
	})
	if err != nil {
		return nil, err
	}

	data := map[string]any{"event_type": event.EventType}
	for key, value := range event.Payload {
		data[key] = value
	}

	matches := make([]*models.Rule, 0, len(rules))

	for _, rule := range rules {
		if conditions.MatchesEvent(rule.EventType(), rule.Filters(), data) {
			matches = append(matches, rule)
		}
	}

	// Same ordering the scheduler uses for simultaneously due rules.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority > matches[j].Priority
	})

	return matches, nil
}

// executeOne isolates each matched rule so one failure cannot stop the
// remaining matches from running.
func (d *RuleDispatcher) executeOne(ctx context.Context, rule *models.Rule, event *models.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.ErrorContext(ctx, "Panic executing event-triggered rule",
				"rule_id", rule.ID, "panic", r)
		}
	}()

	if _, err := d.executor.Execute(ctx, rule.ID, models.TriggeredByEvent, event); err != nil {
		d.logger.ErrorContext(ctx, "Failed to execute event-triggered rule",
			"rule_id", rule.ID, "error", err)
	}
}
