package sendemail

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentlane/automation/pkg/models"
)

type fakeMailer struct {
	to      string
	subject string
	html    string
	err     error
}

func (m *fakeMailer) Send(_ context.Context, to, subject, html string) (string, error) {
	m.to = to
	m.subject = subject
	m.html = html

	if m.err != nil {
		return "", m.err
	}

	return "msg-1", nil
}

func eventContext() models.ExecutionContext {
	return models.ExecutionContext{
		ID:          "exec-1",
		RuleID:      "rule-1",
		TriggeredBy: models.TriggeredByEvent,
		StartedAt:   time.Now().UTC(),
		Event: &models.DomainEvent{
			ID:        "evt-1",
			EventType: models.EventUserRegistered,
			Timestamp: time.Now().UTC(),
			Payload: map[string]any{
				"name":  "Ada",
				"email": "ada@example.com",
			},
		},
	}
}

func TestSendEmailAction_Execute(t *testing.T) {
	mailer := &fakeMailer{}

	action := NewSendEmailAction(map[string]any{
		"to":      "{{event.email}}",
		"subject": "Welcome {{event.name}}",
		"html":    "<p>Hi {{event.name}}</p>",
	}, mailer)

	output, err := action.Execute(t.Context(), eventContext(), slog.Default())
	require.NoError(t, err)

	assert.Equal(t, "ada@example.com", mailer.to)
	assert.Equal(t, "Welcome Ada", mailer.subject)
	assert.Equal(t, "<p>Hi Ada</p>", mailer.html)

	assert.Equal(t, "msg-1", output["message_id"])
	assert.Equal(t, "ada@example.com", output["to"])
}

func TestSendEmailAction_Execute_MailerError(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("relay unavailable")}

	action := NewSendEmailAction(map[string]any{
		"to":      "ops@talentlane.io",
		"subject": "alert",
		"html":    "<p>alert</p>",
	}, mailer)

	_, err := action.Execute(t.Context(), eventContext(), slog.Default())
	assert.ErrorContains(t, err, "relay unavailable")
}

func TestFactory_Schema(t *testing.T) {
	factory := NewFactory(&fakeMailer{})

	assert.Equal(t, models.ActionSendEmail, factory.ID())

	schema := factory.Schema()
	assert.Equal(t, []string{"to", "subject", "html"}, schema["required"])
}
