package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/persistence"
)

const ruleColumns = `
	id
  , name
  , description
  , type
  , trigger
  , conditions
  , actions
  , priority
  , is_active
  , last_run_at
  , next_run_at
  , run_count
  , success_count
  , failure_count
  , created_at
  , updated_at
  , deleted_at
`

// RuleRepository handles rule-related database operations.
type RuleRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRuleRepository creates a new rule repository.
func NewRuleRepository(db *sql.DB, logger *slog.Logger) *RuleRepository {
	return &RuleRepository{db: db, logger: logger}
}

// Save upserts a rule, generating an ID and stamping timestamps when needed.
func (r *RuleRepository) Save(ctx context.Context, rule *models.Rule) error {
	now := time.Now().UTC()

	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	rule.UpdatedAt = now

	if rule.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate rule ID: %w", err)
		}

		rule.ID = id.String()
	}

	conditionsJSON, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal conditions: %w", err)
	}

	actionsJSON, err := json.Marshal(rule.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal actions: %w", err)
	}

	query := `
		INSERT INTO rules (
			id, name, description, type, trigger, conditions, actions, priority,
			is_active, last_run_at, next_run_at, run_count, success_count,
			failure_count, created_at, updated_at, deleted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
		  , description = EXCLUDED.description
		  , type = EXCLUDED.type
		  , trigger = EXCLUDED.trigger
		  , conditions = EXCLUDED.conditions
		  , actions = EXCLUDED.actions
		  , priority = EXCLUDED.priority
		  , is_active = EXCLUDED.is_active
		  , next_run_at = EXCLUDED.next_run_at
		  , updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		rule.ID, rule.Name, rule.Description, rule.Type, rule.Trigger,
		conditionsJSON, actionsJSON, rule.Priority, rule.IsActive,
		rule.LastRunAt, rule.NextRunAt, rule.RunCount, rule.SuccessCount,
		rule.FailureCount, rule.CreatedAt, rule.UpdatedAt, rule.DeletedAt,
	)
	if err != nil {
		return persistence.NewRuleError("save", rule.ID, err)
	}

	return nil
}

// GetByID retrieves a rule by its ID, excluding soft-deleted rules.
func (r *RuleRepository) GetByID(ctx context.Context, id string) (*models.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules WHERE id = $1 AND deleted_at IS NULL`

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewRuleError("get", id, persistence.ErrRuleNotFound)
		}

		return nil, fmt.Errorf("failed to scan rule: %w", err)
	}

	return rule, nil
}

// List returns non-deleted rules matching the filter, ordered by priority
// descending then creation time ascending.
func (r *RuleRepository) List(ctx context.Context, filter persistence.RuleFilter) ([]*models.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules WHERE deleted_at IS NULL`
	args := make([]any, 0, 3)

	if filter.Trigger != nil {
		args = append(args, *filter.Trigger)
		query += fmt.Sprintf(" AND trigger = $%d", len(args))
	}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}

	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += fmt.Sprintf(" AND is_active = $%d", len(args))
	}

	query += " ORDER BY priority DESC, created_at ASC"

	return r.queryRules(ctx, query, args...)
}

// Due returns active scheduled rules whose next_run_at has passed, ordered by
// priority descending then next_run_at ascending.
func (r *RuleRepository) Due(ctx context.Context, now time.Time) ([]*models.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM rules
		WHERE trigger = $1
		  AND is_active = true
		  AND deleted_at IS NULL
		  AND next_run_at IS NOT NULL
		  AND next_run_at <= $2
		ORDER BY priority DESC, next_run_at ASC
	`

	return r.queryRules(ctx, query, models.TriggerScheduled, now)
}

// SetActive toggles a rule's active flag.
func (r *RuleRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE rules SET is_active = $2, updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	return r.execOnRule(ctx, "set_active", id, query, id, active)
}

// Delete soft-deletes a rule. Execution logs referencing it are retained.
func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE rules
		SET deleted_at = NOW(), is_active = false, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	return r.execOnRule(ctx, "delete", id, query, id)
}

// RecordRun atomically updates run bookkeeping after one executor invocation.
// Skipped runs touch last_run_at and next_run_at but not the counters.
func (r *RuleRepository) RecordRun(ctx context.Context, id string, ranAt time.Time, nextRunAt *time.Time, status models.RunStatus) error {
	query := `
		UPDATE rules
		SET last_run_at = $2
		  , next_run_at = COALESCE($3, next_run_at)
		  , run_count = run_count + CASE WHEN $4 IN ('SUCCESS', 'PARTIAL', 'FAILURE') THEN 1 ELSE 0 END
		  , success_count = success_count + CASE WHEN $4 IN ('SUCCESS', 'PARTIAL') THEN 1 ELSE 0 END
		  , failure_count = failure_count + CASE WHEN $4 = 'FAILURE' THEN 1 ELSE 0 END
		  , updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	return r.execOnRule(ctx, "record_run", id, query, id, ranAt, nextRunAt, string(status))
}

func (r *RuleRepository) execOnRule(ctx context.Context, op, id, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return persistence.NewRuleError(op, id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewRuleError(op, id, err)
	}

	if affected == 0 {
		return persistence.NewRuleError(op, id, persistence.ErrRuleNotFound)
	}

	return nil
}

func (r *RuleRepository) queryRules(ctx context.Context, query string, args ...any) ([]*models.Rule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	rules := make([]*models.Rule, 0)

	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}

		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*models.Rule, error) {
	var (
		rule           models.Rule
		conditionsJSON []byte
		actionsJSON    []byte
	)

	err := row.Scan(
		&rule.ID, &rule.Name, &rule.Description, &rule.Type, &rule.Trigger,
		&conditionsJSON, &actionsJSON, &rule.Priority, &rule.IsActive,
		&rule.LastRunAt, &rule.NextRunAt, &rule.RunCount, &rule.SuccessCount,
		&rule.FailureCount, &rule.CreatedAt, &rule.UpdatedAt, &rule.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(conditionsJSON) > 0 {
		if err := json.Unmarshal(conditionsJSON, &rule.Conditions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal conditions: %w", err)
		}
	}

	if len(actionsJSON) > 0 {
		if err := json.Unmarshal(actionsJSON, &rule.Actions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
		}
	}

	return &rule, nil
}
