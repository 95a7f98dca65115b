package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/persistence"
)

// EntityRepository handles the entities actions create (invoices, reminders,
// contracts) and the per-entity status records.
type EntityRepository struct {
	db *sql.DB
}

// NewEntityRepository creates a new entity repository.
func NewEntityRepository(db *sql.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

func (r *EntityRepository) SaveInvoice(ctx context.Context, invoice *models.Invoice) error {
	itemsJSON, err := json.Marshal(invoice.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal invoice items: %w", err)
	}

	query := `
		INSERT INTO invoices (
			id, client_id, freelancer_id, job_id, title, items, tax_rate,
			total, due_date, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(ctx, query,
		invoice.ID, invoice.ClientID, invoice.FreelancerID,
		nullableString(invoice.JobID), invoice.Title, itemsJSON,
		invoice.TaxRate, invoice.Total, invoice.DueDate, invoice.Status,
		invoice.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save invoice %s: %w", invoice.ID, err)
	}

	return nil
}

func (r *EntityRepository) SaveReminder(ctx context.Context, reminder *models.Reminder) error {
	query := `
		INSERT INTO reminders (
			id, user_id, title, description, due_date, priority, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		reminder.ID, reminder.UserID, reminder.Title,
		nullableString(reminder.Description), reminder.DueDate,
		nullableString(reminder.Priority), reminder.Status, reminder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save reminder %s: %w", reminder.ID, err)
	}

	return nil
}

func (r *EntityRepository) SaveContract(ctx context.Context, contract *models.Contract) error {
	termsJSON, err := json.Marshal(contract.Terms)
	if err != nil {
		return fmt.Errorf("failed to marshal contract terms: %w", err)
	}

	query := `
		INSERT INTO contracts (
			id, client_id, freelancer_id, job_id, template_id, terms, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		contract.ID, contract.ClientID, contract.FreelancerID,
		nullableString(contract.JobID), nullableString(contract.TemplateID),
		termsJSON, contract.Status, contract.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save contract %s: %w", contract.ID, err)
	}

	return nil
}

// GetEntityStatus returns the tracked status of an entity.
func (r *EntityRepository) GetEntityStatus(ctx context.Context, entityType, entityID string) (string, error) {
	query := `SELECT status FROM entity_statuses WHERE entity_type = $1 AND entity_id = $2`

	var status string

	err := r.db.QueryRowContext(ctx, query, entityType, entityID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", persistence.ErrEntityStatusNotFound
		}

		return "", fmt.Errorf("failed to fetch status for %s %s: %w", entityType, entityID, err)
	}

	return status, nil
}

// SetEntityStatus records the current status of an entity.
func (r *EntityRepository) SetEntityStatus(ctx context.Context, entityType, entityID, status string) error {
	query := `
		INSERT INTO entity_statuses (entity_type, entity_id, status, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (entity_type, entity_id) DO UPDATE SET
			status = EXCLUDED.status
		  , updated_at = NOW()
	`

	_, err := r.db.ExecContext(ctx, query, entityType, entityID, status)
	if err != nil {
		return fmt.Errorf("failed to set status for %s %s: %w", entityType, entityID, err)
	}

	return nil
}
