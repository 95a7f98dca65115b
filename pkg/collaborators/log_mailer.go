package collaborators

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// LogMailer records outgoing mail in the log instead of delivering it. Used
// in development when no SMTP relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer that only logs.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger.With("module", "mailer")}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	messageID := uuid.New().String()

	m.logger.InfoContext(ctx, "Email delivery skipped, no SMTP relay configured",
		"message_id", messageID,
		"to", to,
		"subject", subject,
		"body_bytes", len(html),
	)

	return messageID, nil
}
