// Package createreminder implements the CREATE_REMINDER action.
package createreminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/talentlane/automation/pkg/collaborators"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/template"
)

type CreateReminderAction struct {
	parameters map[string]any
	reminders  collaborators.Reminders
}

func NewCreateReminderAction(parameters map[string]any, reminders collaborators.Reminders) *CreateReminderAction {
	return &CreateReminderAction{
		parameters: parameters,
		reminders:  reminders,
	}
}

func (a *CreateReminderAction) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	rendered := template.RenderParameters(a.parameters, executionCtx.TemplateData())

	reminder := &models.Reminder{
		UserID:      stringField(rendered, "user_id"),
		Title:       stringField(rendered, "title"),
		Description: stringField(rendered, "description"),
		Priority:    stringField(rendered, "priority"),
	}

	if due := stringField(rendered, "due_date"); due != "" {
		dueDate, err := parseDate(due)
		if err != nil {
			return nil, fmt.Errorf("invalid due_date %q: %w", due, err)
		}

		reminder.DueDate = &dueDate
	}

	logger = logger.With("action_type", models.ActionCreateReminder, "user_id", reminder.UserID)
	logger.InfoContext(ctx, "Creating reminder", "title", reminder.Title)

	created, err := a.reminders.CreateReminder(ctx, reminder)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	return map[string]any{
		"reminder_id": created.ID,
		"user_id":     created.UserID,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date format")
}

func stringField(fields map[string]any, key string) string {
	value, _ := fields[key].(string)

	return value
}
