package models

import "time"

// ExecutionContext is the runtime data available to one rule run: the
// triggering event (if any) and the moment the run started. It is the
// immutable snapshot template placeholders resolve against.
type ExecutionContext struct {
	ID          string       `json:"id"`
	RuleID      string       `json:"rule_id"`
	TriggeredBy TriggeredBy  `json:"triggered_by"`
	Event       *DomainEvent `json:"event,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
}

// TemplateData exposes the context as the root object for {{...}} resolution.
func (c *ExecutionContext) TemplateData() map[string]any {
	data := map[string]any{
		"execution": map[string]any{
			"id":           c.ID,
			"rule_id":      c.RuleID,
			"triggered_by": string(c.TriggeredBy),
			"started_at":   c.StartedAt.UTC().Format(time.RFC3339),
		},
	}

	if c.Event != nil {
		event := map[string]any{
			"id":         c.Event.ID,
			"event_type": c.Event.EventType,
			"timestamp":  c.Event.Timestamp.UTC().Format(time.RFC3339),
		}
		for key, value := range c.Event.Payload {
			event[key] = value
		}

		data["event"] = event
	}

	return data
}

// MatchData is the flat view the condition matcher evaluates field paths
// against. Event payload keys sit at the top level next to event_type.
func (c *ExecutionContext) MatchData() map[string]any {
	if c.Event == nil {
		return map[string]any{}
	}

	data := map[string]any{"event_type": c.Event.EventType}
	for key, value := range c.Event.Payload {
		data[key] = value
	}

	return data
}
