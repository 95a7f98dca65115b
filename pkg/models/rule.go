// Package models defines the core domain models for marketplace automation rules.
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// RuleType categorizes what a rule automates.
type RuleType string

const (
	RuleTypeEmailMarketing     RuleType = "EMAIL_MARKETING"
	RuleTypeFollowUp           RuleType = "FOLLOW_UP"
	RuleTypeInvoicing          RuleType = "INVOICING"
	RuleTypeLeadScoring        RuleType = "LEAD_SCORING"
	RuleTypeContractManagement RuleType = "CONTRACT_MANAGEMENT"
	RuleTypeReminder           RuleType = "REMINDER"
	RuleTypeStatusUpdate       RuleType = "STATUS_UPDATE"
	RuleTypeCustom             RuleType = "CUSTOM"
)

// TriggerType decides when a rule is considered for execution.
type TriggerType string

const (
	TriggerScheduled      TriggerType = "SCHEDULED"
	TriggerEventBased     TriggerType = "EVENT_BASED"
	TriggerConditionBased TriggerType = "CONDITION_BASED"
	TriggerManual         TriggerType = "MANUAL"
)

var (
	ErrEmptyActions       = errors.New("rule must define at least one action")
	ErrUnknownActionType  = errors.New("unknown action type")
	ErrUnknownTriggerType = errors.New("unknown trigger type")
	ErrInvalidSchedule    = errors.New("scheduled rule requires a positive interval_minutes or a cron expression")
	ErrMissingEventType   = errors.New("event-based rule requires conditions.event_type")
)

// Rule is a stored automation definition combining a trigger, optional
// conditions, and an ordered action list.
type Rule struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"        validate:"required,min=3"`
	Description string      `json:"description"`
	Type        RuleType    `json:"type"        validate:"required"`
	Trigger     TriggerType `json:"trigger"     validate:"required"`

	// Conditions carries a trigger-dependent payload: interval_minutes or
	// cron for SCHEDULED, event_type plus optional filters for EVENT_BASED,
	// an expression tree for CONDITION_BASED. SCHEDULED and EVENT_BASED
	// rules may additionally carry an expression tree under "expression".
	Conditions map[string]any `json:"conditions,omitempty"`

	Actions  []Action `json:"actions" validate:"required,min=1,dive"`
	Priority int      `json:"priority"`
	IsActive bool     `json:"is_active"`

	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	NextRunAt *time.Time `json:"next_run_at,omitempty"`

	RunCount     int64 `json:"run_count"`
	SuccessCount int64 `json:"success_count"`
	FailureCount int64 `json:"failure_count"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// cronParser accepts the standard 5-field expressions used in schedule conditions.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Validate checks trigger/condition shape consistency beyond struct tags.
func (r *Rule) Validate() error {
	switch r.Trigger {
	case TriggerScheduled:
		if _, _, err := r.scheduleSpec(); err != nil {
			return err
		}
	case TriggerEventBased:
		if r.EventType() == "" {
			return ErrMissingEventType
		}
	case TriggerConditionBased, TriggerManual:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTriggerType, r.Trigger)
	}

	if len(r.Actions) == 0 {
		return ErrEmptyActions
	}

	for _, action := range r.Actions {
		if !action.Type.Known() {
			return fmt.Errorf("%w: %q", ErrUnknownActionType, action.Type)
		}
	}

	return nil
}

// IntervalMinutes returns the polling interval of a SCHEDULED rule, if one is set.
func (r *Rule) IntervalMinutes() (int, bool) {
	raw, ok := r.Conditions["interval_minutes"]
	if !ok {
		return 0, false
	}

	switch v := raw.(type) {
	case int:
		return v, v > 0
	case int64:
		return int(v), v > 0
	case float64:
		return int(v), v > 0
	default:
		return 0, false
	}
}

// CronExpression returns the cron schedule of a SCHEDULED rule, if one is set.
func (r *Rule) CronExpression() (string, bool) {
	expr, ok := r.Conditions["cron"].(string)

	return expr, ok && expr != ""
}

// EventType returns the event type an EVENT_BASED rule listens for.
func (r *Rule) EventType() string {
	eventType, _ := r.Conditions["event_type"].(string)

	return eventType
}

// Filters returns the optional payload filters of an EVENT_BASED rule.
func (r *Rule) Filters() map[string]any {
	filters, _ := r.Conditions["filters"].(map[string]any)

	return filters
}

// Expression returns the supplementary boolean expression tree, if any.
// For CONDITION_BASED rules the whole conditions payload is the tree.
func (r *Rule) Expression() map[string]any {
	if r.Trigger == TriggerConditionBased {
		return r.Conditions
	}

	expr, _ := r.Conditions["expression"].(map[string]any)

	return expr
}

// NextRunAfter computes the run that follows the given reference time.
func (r *Rule) NextRunAfter(from time.Time) (time.Time, error) {
	interval, cronExpr, err := r.scheduleSpec()
	if err != nil {
		return time.Time{}, err
	}

	if cronExpr != "" {
		schedule, err := cronParser.Parse(cronExpr)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
		}

		return schedule.Next(from), nil
	}

	return from.Add(time.Duration(interval) * time.Minute), nil
}

func (r *Rule) scheduleSpec() (int, string, error) {
	if expr, ok := r.CronExpression(); ok {
		if _, err := cronParser.Parse(expr); err != nil {
			return 0, "", fmt.Errorf("%w: %w", ErrInvalidSchedule, err)
		}

		return 0, expr, nil
	}

	if interval, ok := r.IntervalMinutes(); ok {
		return interval, "", nil
	}

	return 0, "", ErrInvalidSchedule
}
