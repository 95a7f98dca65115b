package cmd

import (
	"log/slog"

	"github.com/talentlane/automation/pkg/collaborators"
	"github.com/talentlane/automation/pkg/persistence"
)

// SMTPConfig carries the mail relay settings. An empty host selects the
// log-only mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// NewCollaborators wires the action handlers' collaborators against the
// persistence layer and the configured mail relay.
func NewCollaborators(logger *slog.Logger, p persistence.Persistence, smtp SMTPConfig) collaborators.Set {
	var mailer collaborators.Mailer = collaborators.NewLogMailer(logger)
	if smtp.Host != "" {
		mailer = collaborators.NewSMTPMailer(smtp.Host, smtp.Port, smtp.Username, smtp.Password)
	}

	return collaborators.Set{
		Mailer:        mailer,
		Invoicing:     collaborators.NewStoreInvoicing(p.Invoices()),
		StatusUpdater: collaborators.NewEntityStatusUpdater(p.EntityStatuses()),
		Reminders:     collaborators.NewStoreReminders(p.Reminders()),
		Contracts:     collaborators.NewStoreContracts(p.Contracts()),
	}
}
