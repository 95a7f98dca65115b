// Package collaborators defines the external services the action handlers
// call into, plus the implementations this service ships with. The wider
// marketplace application owns these domains; the automation engine only
// consumes them.
package collaborators

import (
	"context"
	"errors"

	"github.com/talentlane/automation/pkg/models"
)

var (
	// ErrEntityNotFound indicates the target of a status update does not exist.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrInvalidTransition indicates the requested status is not reachable
	// from the entity's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrUnknownEntityType indicates an entity type with no managed lifecycle.
	ErrUnknownEntityType = errors.New("unknown entity type")
)

// Mailer delivers a single email and returns a provider message id.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) (string, error)
}

// Invoicing persists a new invoice and returns it with its id assigned.
type Invoicing interface {
	CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
}

// StatusUpdater applies a status transition to a marketplace entity.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, entityType, entityID, newStatus string) error
}

// Reminders persists a new reminder and returns it with its id assigned.
type Reminders interface {
	CreateReminder(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error)
}

// Contracts generates a contract from a template and returns it persisted.
type Contracts interface {
	GenerateContract(ctx context.Context, contract *models.Contract) (*models.Contract, error)
}

// Set bundles every collaborator the action registry needs.
type Set struct {
	Mailer        Mailer
	Invoicing     Invoicing
	StatusUpdater StatusUpdater
	Reminders     Reminders
	Contracts     Contracts
}

// IsEntityNotFound reports whether err is an entity-not-found failure.
func IsEntityNotFound(err error) bool {
	return errors.Is(err, ErrEntityNotFound)
}

// IsInvalidTransition reports whether err is an invalid-transition failure.
func IsInvalidTransition(err error) bool {
	return errors.Is(err, ErrInvalidTransition)
}
