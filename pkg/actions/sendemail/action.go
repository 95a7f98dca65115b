// Package sendemail implements the SEND_EMAIL action: renders the recipient,
// subject, and HTML body against the execution context and hands the message
// to the mail collaborator.
package sendemail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talentlane/automation/pkg/collaborators"
	"github.com/talentlane/automation/pkg/models"
	"github.com/talentlane/automation/pkg/template"
)

type SendEmailAction struct {
	to      string
	subject string
	html    string
	mailer  collaborators.Mailer
}

func NewSendEmailAction(parameters map[string]any, mailer collaborators.Mailer) *SendEmailAction {
	to, _ := parameters["to"].(string)
	subject, _ := parameters["subject"].(string)
	html, _ := parameters["html"].(string)

	return &SendEmailAction{
		to:      to,
		subject: subject,
		html:    html,
		mailer:  mailer,
	}
}

func (a *SendEmailAction) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (map[string]any, error) {
	data := executionCtx.TemplateData()

	to := template.Render(a.to, data)
	subject := template.Render(a.subject, data)
	html := template.Render(a.html, data)

	logger = logger.With("action_type", models.ActionSendEmail, "to", to)
	logger.InfoContext(ctx, "Sending email", "subject", subject)

	messageID, err := a.mailer.Send(ctx, to, subject, html)
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	return map[string]any{
		"message_id": messageID,
		"to":         to,
		"subject":    subject,
	}, nil
}
