// Package postgresql provides PostgreSQL persistence for automation rules,
// execution logs, and the entities actions create.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// Registers the postgres driver.
	_ "github.com/lib/pq"

	"github.com/talentlane/automation/pkg/persistence"
	"github.com/talentlane/automation/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db               *sql.DB
	logger           *slog.Logger
	ruleRepo         *RuleRepository
	executionLogRepo *ExecutionLogRepository
	entityRepo       *EntityRepository
}

// NewPersistence connects to PostgreSQL and runs pending migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	if err := database.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())
	if err := migrationManager.RunMigrations(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:               database,
		logger:           logger,
		ruleRepo:         NewRuleRepository(database, logger),
		executionLogRepo: NewExecutionLogRepository(database, logger),
		entityRepo:       NewEntityRepository(database),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) Rules() persistence.RuleRepository {
	return p.ruleRepo
}

func (p *Persistence) ExecutionLogs() persistence.ExecutionLogRepository {
	return p.executionLogRepo
}

func (p *Persistence) Invoices() persistence.InvoiceRepository {
	return p.entityRepo
}

func (p *Persistence) Reminders() persistence.ReminderRepository {
	return p.entityRepo
}

func (p *Persistence) Contracts() persistence.ContractRepository {
	return p.entityRepo
}

func (p *Persistence) EntityStatuses() persistence.EntityStatusRepository {
	return p.entityRepo
}
