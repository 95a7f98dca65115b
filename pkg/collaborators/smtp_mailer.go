package collaborators

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// SMTPMailer delivers email through an SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer dialing the given relay. The username is
// used as the From address.
func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   username,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, html string) (string, error) {
	if _, err := mail.ParseAddress(to); err != nil {
		return "", fmt.Errorf("invalid recipient address %q: %w", to, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	messageID := uuid.New().String()
	msg.SetHeader("Message-Id", "<"+messageID+"@talentlane>")

	if err := m.dialer.DialAndSend(msg); err != nil {
		return "", fmt.Errorf("smtp delivery to %s failed: %w", to, err)
	}

	return messageID, nil
}
