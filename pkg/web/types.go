// Package web provides HTTP request and response types for the automation API.
package web

import "github.com/talentlane/automation/pkg/models"

// CreateRuleRequest represents the request body for creating a new rule.
type CreateRuleRequest struct {
	Name        string             `json:"name"        validate:"required,min=3"`
	Description string             `json:"description"`
	Type        models.RuleType    `json:"type"        validate:"required"`
	Trigger     models.TriggerType `json:"trigger"     validate:"required"`
	Conditions  map[string]any     `json:"conditions,omitempty"`
	Actions     []models.Action    `json:"actions"     validate:"required,min=1,dive"`
	Priority    int                `json:"priority"`
	IsActive    *bool              `json:"is_active,omitempty"`
}

// ToRule converts the request into a domain rule. Rules default to active
// unless the request says otherwise.
func (r CreateRuleRequest) ToRule() *models.Rule {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	return &models.Rule{
		Name:        r.Name,
		Description: r.Description,
		Type:        r.Type,
		Trigger:     r.Trigger,
		Conditions:  r.Conditions,
		Actions:     r.Actions,
		Priority:    r.Priority,
		IsActive:    active,
	}
}

// UpdateRuleRequest represents the request body for updating an existing rule.
// All fields are optional to support partial updates.
type UpdateRuleRequest struct {
	Name        *string             `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string             `json:"description,omitempty"`
	Type        *models.RuleType    `json:"type,omitempty"`
	Trigger     *models.TriggerType `json:"trigger,omitempty"`
	Conditions  map[string]any      `json:"conditions,omitempty"`
	Actions     []models.Action     `json:"actions,omitempty"     validate:"omitempty,min=1,dive"`
	Priority    *int                `json:"priority,omitempty"`
	IsActive    *bool               `json:"is_active,omitempty"`
}

// ApplyTo merges the partial update onto an existing rule.
func (r UpdateRuleRequest) ApplyTo(rule *models.Rule) {
	if r.Name != nil {
		rule.Name = *r.Name
	}

	if r.Description != nil {
		rule.Description = *r.Description
	}

	if r.Type != nil {
		rule.Type = *r.Type
	}

	if r.Trigger != nil {
		rule.Trigger = *r.Trigger
	}

	if r.Conditions != nil {
		rule.Conditions = r.Conditions
	}

	if r.Actions != nil {
		rule.Actions = r.Actions
	}

	if r.Priority != nil {
		rule.Priority = *r.Priority
	}

	if r.IsActive != nil {
		rule.IsActive = *r.IsActive
	}
}

// ExecuteRuleRequest represents the optional body of a manual execution
// request. The payload becomes the event data available to templates.
type ExecuteRuleRequest struct {
	Payload map[string]any `json:"payload,omitempty"`
}

// PublishEventRequest represents the request body for submitting a domain
// event to the bus.
type PublishEventRequest struct {
	EventType string         `json:"event_type" validate:"required"`
	Payload   map[string]any `json:"payload,omitempty"`
}
