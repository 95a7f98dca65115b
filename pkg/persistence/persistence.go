// Package persistence provides the data storage abstraction for automation
// rules, execution logs, and the marketplace entities the actions create.
package persistence

import (
	"context"
	"time"

	"github.com/talentlane/automation/pkg/models"
)

// RuleFilter narrows rule listings. Nil fields match everything; soft-deleted
// rules are always excluded.
type RuleFilter struct {
	Trigger  *models.TriggerType
	Type     *models.RuleType
	IsActive *bool
}

// RuleRepository stores automation rules.
type RuleRepository interface {
	Save(ctx context.Context, rule *models.Rule) error
	GetByID(ctx context.Context, id string) (*models.Rule, error)
	List(ctx context.Context, filter RuleFilter) ([]*models.Rule, error)

	// Due returns active SCHEDULED rules with next_run_at <= now, ordered by
	// priority descending then next_run_at ascending.
	Due(ctx context.Context, now time.Time) ([]*models.Rule, error)

	SetActive(ctx context.Context, id string, active bool) error

	// Delete soft-deletes: execution logs referencing the rule are retained.
	Delete(ctx context.Context, id string) error

	// RecordRun updates last_run_at, next_run_at, and the run counters after
	// one executor invocation.
	RecordRun(ctx context.Context, id string, ranAt time.Time, nextRunAt *time.Time, status models.RunStatus) error
}

// ExecutionLogRepository stores immutable rule run records and aggregates
// them into metrics. SystemMetrics leaves the rule-count fields zero; callers
// holding a RuleRepository fill those in.
type ExecutionLogRepository interface {
	Save(ctx context.Context, log *models.ExecutionLog) error
	ByRule(ctx context.Context, ruleID string, limit int) ([]*models.ExecutionLog, error)
	Recent(ctx context.Context, limit int) ([]*models.ExecutionLog, error)
	RuleMetrics(ctx context.Context, ruleID string) (*models.RuleMetrics, error)
	SystemMetrics(ctx context.Context) (*models.SystemMetrics, error)
}

// InvoiceRepository persists invoices created by CREATE_INVOICE actions.
type InvoiceRepository interface {
	SaveInvoice(ctx context.Context, invoice *models.Invoice) error
}

// ReminderRepository persists reminders created by CREATE_REMINDER actions.
type ReminderRepository interface {
	SaveReminder(ctx context.Context, reminder *models.Reminder) error
}

// ContractRepository persists contracts created by GENERATE_CONTRACT actions.
type ContractRepository interface {
	SaveContract(ctx context.Context, contract *models.Contract) error
}

// EntityStatusRepository tracks the current status of marketplace entities
// targeted by UPDATE_STATUS actions.
type EntityStatusRepository interface {
	GetEntityStatus(ctx context.Context, entityType, entityID string) (string, error)
	SetEntityStatus(ctx context.Context, entityType, entityID, status string) error
}

// Persistence is the full storage surface of the automation engine.
type Persistence interface {
	Rules() RuleRepository
	ExecutionLogs() ExecutionLogRepository
	Invoices() InvoiceRepository
	Reminders() ReminderRepository
	Contracts() ContractRepository
	EntityStatuses() EntityStatusRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
