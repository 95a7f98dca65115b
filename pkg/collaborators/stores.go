package collaborators

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/persistence"
)

// StoreInvoicing persists invoices through the persistence layer.
type StoreInvoicing struct {
	repo persistence.InvoiceRepository
}

func NewStoreInvoicing(repo persistence.InvoiceRepository) *StoreInvoicing {
	return &StoreInvoicing{repo: repo}
}

func (s *StoreInvoicing) CreateInvoice(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}

	invoice.Status = "PENDING"
	invoice.Total = invoice.ComputeTotal()
	invoice.CreatedAt = time.Now().UTC()

	if err := s.repo.SaveInvoice(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to persist invoice: %w", err)
	}

	return invoice, nil
}

// StoreReminders persists reminders through the persistence layer.
type StoreReminders struct {
	repo persistence.ReminderRepository
}

func NewStoreReminders(repo persistence.ReminderRepository) *StoreReminders {
	return &StoreReminders{repo: repo}
}

func (s *StoreReminders) CreateReminder(ctx context.Context, reminder *models.Reminder) (*models.Reminder, error) {
	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}

	reminder.Status = "OPEN"
	reminder.CreatedAt = time.Now().UTC()

	if err := s.repo.SaveReminder(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to persist reminder: %w", err)
	}

	return reminder, nil
}

// StoreContracts persists generated contracts through the persistence layer.
type StoreContracts struct {
	repo persistence.ContractRepository
}

func NewStoreContracts(repo persistence.ContractRepository) *StoreContracts {
	return &StoreContracts{repo: repo}
}

func (s *StoreContracts) GenerateContract(ctx context.Context, contract *models.Contract) (*models.Contract, error) {
	if contract.ID == "" {
		contract.ID = uuid.New().String()
	}

	contract.Status = "DRAFT"
	contract.CreatedAt = time.Now().UTC()

	if err := s.repo.SaveContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to persist contract: %w", err)
	}

	return contract, nil
}
