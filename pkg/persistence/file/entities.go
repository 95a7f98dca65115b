package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/persistence"
)

// EntityRepository stores the entities actions create (invoices, reminders,
// contracts) and the per-entity status records, each as a JSON document under
// its own subdirectory.
type EntityRepository struct {
	root string

	mu sync.Mutex
}

// NewEntityRepository creates a new entity repository.
func NewEntityRepository(root string) *EntityRepository {
	return &EntityRepository{root: root}
}

func (er *EntityRepository) SaveInvoice(_ context.Context, invoice *models.Invoice) error {
	return er.writeJSON("invoices", invoice.ID, invoice)
}

func (er *EntityRepository) SaveReminder(_ context.Context, reminder *models.Reminder) error {
	return er.writeJSON("reminders", reminder.ID, reminder)
}

func (er *EntityRepository) SaveContract(_ context.Context, contract *models.Contract) error {
	return er.writeJSON("contracts", contract.ID, contract)
}

type entityStatusRecord struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Status     string `json:"status"`
}

// GetEntityStatus returns the tracked status of an entity.
func (er *EntityRepository) GetEntityStatus(_ context.Context, entityType, entityID string) (string, error) {
	filePath := filepath.Clean(path.Join(er.root, "statuses", entityType+"-"+entityID+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", persistence.ErrEntityStatusNotFound
		}

		return "", fmt.Errorf("failed to fetch status for %s %s: %w", entityType, entityID, err)
	}

	var record entityStatusRecord

	if err := json.Unmarshal(body, &record); err != nil {
		return "", fmt.Errorf("failed to unmarshal status for %s %s: %w", entityType, entityID, err)
	}

	return record.Status, nil
}

// SetEntityStatus records the current status of an entity.
func (er *EntityRepository) SetEntityStatus(_ context.Context, entityType, entityID, status string) error {
	record := entityStatusRecord{
		EntityType: entityType,
		EntityID:   entityID,
		Status:     status,
	}

	return er.writeJSON("statuses", entityType+"-"+entityID, record)
}

func (er *EntityRepository) writeJSON(kind, id string, value any) error {
	er.mu.Lock()
	defer er.mu.Unlock()

	dir := path.Join(er.root, kind)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", kind, err)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s %s: %w", kind, id, err)
	}

	return os.WriteFile(path.Join(dir, id+".json"), data, 0600)
}
