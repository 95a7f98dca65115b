package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/persistence"
	"github.com/talentlane/automation/pkg/registry"
)

// ErrRuleNotFound is returned when a rule is not found.
var ErrRuleNotFound = persistence.ErrRuleNotFound

func nowUTC() time.Time {
	return time.Now().UTC()
}

// Rule provides the business operations on automation rules: validated
// creation and updates, listing, activation toggling, and soft deletion.
type Rule struct {
	persistence persistence.Persistence
	registry    *registry.Registry
}

// NewRule creates a new rule service.
func NewRule(persistence persistence.Persistence, registry *registry.Registry) *Rule {
	return &Rule{
		persistence: persistence,
		registry:    registry,
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Rule) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	if err := s.persistence.HealthCheck(ctx); err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Create validates and persists a new rule. Scheduled rules get their first
// next_run_at computed from the creation time.
func (s *Rule) Create(ctx context.Context, rule *models.Rule) (*models.Rule, error) {
	if rule == nil {
		return nil, ErrRuleNil
	}

	if err := s.validate(rule); err != nil {
		return nil, err
	}

	if rule.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate rule id: %w", err)
		}

		rule.ID = id.String()
	}

	if rule.Trigger == models.TriggerScheduled && rule.NextRunAt == nil {
		next, err := rule.NextRunAfter(nowUTC())
		if err != nil {
			return nil, err
		}

		rule.NextRunAt = &next
	}

	if err := s.persistence.Rules().Save(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to save rule: %w", err)
	}

	return rule, nil
}

// Update validates and persists changes to an existing rule. A schedule
// change recomputes next_run_at.
func (s *Rule) Update(ctx context.Context, id string, rule *models.Rule) (*models.Rule, error) {
	if rule == nil {
		return nil, ErrRuleNil
	}

	existing, err := s.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	rule.ID = existing.ID
	rule.CreatedAt = existing.CreatedAt
	rule.LastRunAt = existing.LastRunAt
	rule.RunCount = existing.RunCount
	rule.SuccessCount = existing.SuccessCount
	rule.FailureCount = existing.FailureCount

	if err := s.validate(rule); err != nil {
		return nil, err
	}

	if rule.Trigger == models.TriggerScheduled {
		next, err := rule.NextRunAfter(nowUTC())
		if err != nil {
			return nil, err
		}

		rule.NextRunAt = &next
	} else {
		rule.NextRunAt = nil
	}

	if err := s.persistence.Rules().Save(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to save rule: %w", err)
	}

	return rule, nil
}

// FetchByID retrieves a rule by its ID.
func (s *Rule) FetchByID(ctx context.Context, id string) (*models.Rule, error) {
	rule, err := s.persistence.Rules().GetByID(ctx, id)
	if err != nil {
		if persistence.IsRuleNotFound(err) {
			return nil, err
		}

		return nil, fmt.Errorf("failed to fetch rule %s: %w", id, err)
	}

	return rule, nil
}

// List returns rules matching the filter.
func (s *Rule) List(ctx context.Context, filter persistence.RuleFilter) ([]*models.Rule, error) {
	rules, err := s.persistence.Rules().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	return rules, nil
}

// SetActive toggles a rule's active flag. Reactivating a scheduled rule
// recomputes next_run_at so a long pause does not cause an immediate burst.
func (s *Rule) SetActive(ctx context.Context, id string, active bool) error {
	rule, err := s.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	if active && rule.Trigger == models.TriggerScheduled {
		next, err := rule.NextRunAfter(nowUTC())
		if err != nil {
			return err
		}

		rule.NextRunAt = &next
		rule.IsActive = true

		if err := s.persistence.Rules().Save(ctx, rule); err != nil {
			return fmt.Errorf("failed to save rule: %w", err)
		}

		return nil
	}

	return s.persistence.Rules().SetActive(ctx, id, active)
}

// Delete soft-deletes a rule, retaining its execution logs.
func (s *Rule) Delete(ctx context.Context, id string) error {
	return s.persistence.Rules().Delete(ctx, id)
}

// validate combines the model's structural checks with per-action schema
// validation from the registry.
func (s *Rule) validate(rule *models.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	for i, action := range rule.Actions {
		if err := s.registry.ValidateAction(action); err != nil {
			return NewValidationError("validate_rule", "invalid_action",
				fmt.Sprintf("action %d: %v", i, err), ErrInvalidRequest)
		}
	}

	return nil
}
