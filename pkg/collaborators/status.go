package collaborators

import (
	"context"
	"fmt"

	"github.com/talentlane/automation/pkg/persistence"
)

// entityTransitions maps each managed entity type to its allowed status
// transitions. The entity's own lifecycle owns this set; the dispatcher only
// forwards the call.
var entityTransitions = map[string]map[string][]string{
	"job": {
		"OPEN":        {"IN_PROGRESS", "CANCELLED"},
		"IN_PROGRESS": {"COMPLETED", "CANCELLED"},
		"COMPLETED":   {},
		"CANCELLED":   {},
	},
	"proposal": {
		"SUBMITTED": {"ACCEPTED", "REJECTED", "WITHDRAWN"},
		"ACCEPTED":  {},
		"REJECTED":  {},
		"WITHDRAWN": {},
	},
	"contract": {
		"DRAFT":      {"SENT", "CANCELLED"},
		"SENT":       {"SIGNED", "CANCELLED"},
		"SIGNED":     {"COMPLETED", "TERMINATED"},
		"COMPLETED":  {},
		"TERMINATED": {},
		"CANCELLED":  {},
	},
	"invoice": {
		"PENDING":   {"SENT", "CANCELLED"},
		"SENT":      {"PAID", "OVERDUE", "CANCELLED"},
		"OVERDUE":   {"PAID", "CANCELLED"},
		"PAID":      {},
		"CANCELLED": {},
	},
}

// EntityStatusUpdater applies lifecycle transitions to marketplace entities,
// reading and writing current status through the persistence layer.
type EntityStatusUpdater struct {
	statuses persistence.EntityStatusRepository
}

func NewEntityStatusUpdater(statuses persistence.EntityStatusRepository) *EntityStatusUpdater {
	return &EntityStatusUpdater{statuses: statuses}
}

func (u *EntityStatusUpdater) UpdateStatus(ctx context.Context, entityType, entityID, newStatus string) error {
	transitions, ok := entityTransitions[entityType]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}

	current, err := u.statuses.GetEntityStatus(ctx, entityType, entityID)
	if err != nil {
		if persistence.IsEntityStatusNotFound(err) {
			return fmt.Errorf("%w: %s %s", ErrEntityNotFound, entityType, entityID)
		}

		return fmt.Errorf("failed to load %s %s: %w", entityType, entityID, err)
	}

	if !transitionAllowed(transitions, current, newStatus) {
		return fmt.Errorf("%w: %s %s cannot move from %s to %s",
			ErrInvalidTransition, entityType, entityID, current, newStatus)
	}

	if err := u.statuses.SetEntityStatus(ctx, entityType, entityID, newStatus); err != nil {
		return fmt.Errorf("failed to update %s %s: %w", entityType, entityID, err)
	}

	return nil
}

func transitionAllowed(transitions map[string][]string, current, next string) bool {
	for _, allowed := range transitions[current] {
		if allowed == next {
			return true
		}
	}

	return false
}
