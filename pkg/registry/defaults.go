package registry

import (
	"log/slog"

	"github.com/talentlane/automation/pkg/actions/createinvoice"
	"github.com/talentlane/automation/pkg/actions/createreminder"
	"github.com/talentlane/automation/pkg/actions/generatecontract"
	"github.com/talentlane/automation/pkg/actions/sendemail"
	"github.com/talentlane/automation/pkg/actions/updatestatus"
	"github.com/talentlane/automation/pkg/collaborators"
)

// Default builds a registry with every shipped action type wired to the
// given collaborators.
func Default(logger *slog.Logger, collabs collaborators.Set) *Registry {
	r := NewRegistry(logger)

	r.Register(sendemail.NewFactory(collabs.Mailer))
	r.Register(createinvoice.NewFactory(collabs.Invoicing))
	r.Register(updatestatus.NewFactory(collabs.StatusUpdater))
	r.Register(createreminder.NewFactory(collabs.Reminders))
	r.Register(generatecontract.NewFactory(collabs.Contracts))

	return r
}
