// Package file provides file-based persistence for automation rules,
// execution logs, and the entities actions create. Intended for development
// and single-node deployments.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/talentlane/automation/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root             string
	ruleRepo         *RuleRepository
	executionLogRepo *ExecutionLogRepository
	entityRepo       *EntityRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:             cleanRoot,
		ruleRepo:         NewRuleRepository(cleanRoot),
		executionLogRepo: NewExecutionLogRepository(cleanRoot),
		entityRepo:       NewEntityRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) Rules() persistence.RuleRepository {
	return fp.ruleRepo
}

func (fp *Persistence) ExecutionLogs() persistence.ExecutionLogRepository {
	return fp.executionLogRepo
}

func (fp *Persistence) Invoices() persistence.InvoiceRepository {
	return fp.entityRepo
}

func (fp *Persistence) Reminders() persistence.ReminderRepository {
	return fp.entityRepo
}

func (fp *Persistence) Contracts() persistence.ContractRepository {
	return fp.entityRepo
}

func (fp *Persistence) EntityStatuses() persistence.EntityStatusRepository {
	return fp.entityRepo
}
