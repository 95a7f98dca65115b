package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validActions() []Action {
	return []Action{
		{Type: ActionSendEmail, Parameters: map[string]any{
			"to":      "ops@talentlane.io",
			"subject": "hi",
			"html":    "<p>hi</p>",
		}},
	}
}

func TestRule_Validate(t *testing.T) {
	tests := []struct {
		name    string
		rule    Rule
		wantErr error
	}{
		{
			name: "scheduled rule with interval",
			rule: Rule{
				Trigger:    TriggerScheduled,
				Conditions: map[string]any{"interval_minutes": 15.0},
				Actions:    validActions(),
			},
		},
		{
			name: "scheduled rule with cron expression",
			rule: Rule{
				Trigger:    TriggerScheduled,
				Conditions: map[string]any{"cron": "0 9 * * 1-5"},
				Actions:    validActions(),
			},
		},
		{
			name: "scheduled rule without schedule",
			rule: Rule{
				Trigger: TriggerScheduled,
				Actions: validActions(),
			},
			wantErr: ErrInvalidSchedule,
		},
		{
			name: "scheduled rule with zero interval",
			rule: Rule{
				Trigger:    TriggerScheduled,
				Conditions: map[string]any{"interval_minutes": 0.0},
				Actions:    validActions(),
			},
			wantErr: ErrInvalidSchedule,
		},
		{
			name: "scheduled rule with malformed cron",
			rule: Rule{
				Trigger:    TriggerScheduled,
				Conditions: map[string]any{"cron": "not a cron"},
				Actions:    validActions(),
			},
			wantErr: ErrInvalidSchedule,
		},
		{
			name: "event rule with event type",
			rule: Rule{
				Trigger:    TriggerEventBased,
				Conditions: map[string]any{"event_type": "INVOICE_PAID"},
				Actions:    validActions(),
			},
		},
		{
			name: "event rule without event type",
			rule: Rule{
				Trigger: TriggerEventBased,
				Actions: validActions(),
			},
			wantErr: ErrMissingEventType,
		},
		{
			name: "manual rule without conditions",
			rule: Rule{
				Trigger: TriggerManual,
				Actions: validActions(),
			},
		},
		{
			name: "unknown trigger",
			rule: Rule{
				Trigger: TriggerType("WEBHOOK"),
				Actions: validActions(),
			},
			wantErr: ErrUnknownTriggerType,
		},
		{
			name: "no actions",
			rule: Rule{
				Trigger: TriggerManual,
			},
			wantErr: ErrEmptyActions,
		},
		{
			name: "unknown action type",
			rule: Rule{
				Trigger: TriggerManual,
				Actions: []Action{{Type: ActionType("DELETE_USER")}},
			},
			wantErr: ErrUnknownActionType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()

			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestRule_IntervalMinutes(t *testing.T) {
	tests := []struct {
		name         string
		conditions   map[string]any
		wantInterval int
		wantOK       bool
	}{
		{name: "float from json decoding", conditions: map[string]any{"interval_minutes": 30.0}, wantInterval: 30, wantOK: true},
		{name: "plain int", conditions: map[string]any{"interval_minutes": 5}, wantInterval: 5, wantOK: true},
		{name: "negative interval", conditions: map[string]any{"interval_minutes": -1}, wantOK: false},
		{name: "missing", conditions: map[string]any{}, wantOK: false},
		{name: "wrong type", conditions: map[string]any{"interval_minutes": "30"}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := Rule{Conditions: tt.conditions}

			interval, ok := rule.IntervalMinutes()
			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.Equal(t, tt.wantInterval, interval)
			}
		})
	}
}

func TestRule_NextRunAfter_Interval(t *testing.T) {
	rule := Rule{
		Trigger:    TriggerScheduled,
		Conditions: map[string]any{"interval_minutes": 45.0},
	}

	from := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	next, err := rule.NextRunAfter(from)
	require.NoError(t, err)
	assert.Equal(t, from.Add(45*time.Minute), next)
}

func TestRule_NextRunAfter_Cron(t *testing.T) {
	// Weekdays at 09:00
	rule := Rule{
		Trigger:    TriggerScheduled,
		Conditions: map[string]any{"cron": "0 9 * * 1-5"},
	}

	// Monday 10:00, next run is Tuesday 09:00
	from := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

	next, err := rule.NextRunAfter(from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC), next)
}

func TestRule_NextRunAfter_CronTakesPrecedence(t *testing.T) {
	rule := Rule{
		Trigger: TriggerScheduled,
		Conditions: map[string]any{
			"cron":             "0 0 * * *",
			"interval_minutes": 5.0,
		},
	}

	from := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	next, err := rule.NextRunAfter(from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), next)
}

func TestRule_Expression(t *testing.T) {
	conditionRule := Rule{
		Trigger: TriggerConditionBased,
		Conditions: map[string]any{
			"all": []any{
				map[string]any{"field": "amount", "operator": "gt", "value": 100},
			},
		},
	}
	assert.Equal(t, conditionRule.Conditions, conditionRule.Expression())

	eventRule := Rule{
		Trigger: TriggerEventBased,
		Conditions: map[string]any{
			"event_type": "INVOICE_PAID",
			"expression": map[string]any{
				"all": []any{
					map[string]any{"field": "amount", "operator": "gt", "value": 100},
				},
			},
		},
	}
	assert.Equal(t, eventRule.Conditions["expression"], any(eventRule.Expression()))

	bare := Rule{Trigger: TriggerEventBased, Conditions: map[string]any{"event_type": "JOB_CREATED"}}
	assert.Empty(t, bare.Expression())
}
