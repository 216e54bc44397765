package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// OutgoingEmail is one fully-rendered email ready for delivery
type OutgoingEmail struct {
	To          string
	Subject     string
	HTMLContent string
	PreviewText string
}

// Mailer sends a single email and reports the provider's reference id. A nil
// error means the provider accepted the message; any non-nil error is treated
// uniformly as a delivery failure by callers.
type Mailer interface {
	Send(email OutgoingEmail) (providerID string, err error)
}

// MailerConfig carries the delivery settings a mailer needs
type MailerConfig struct {
	Provider     string
	ResendAPIKey string
	FromEmail    string
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
}

// NewMailer builds the configured delivery gateway
func NewMailer(cfg MailerConfig) (Mailer, error) {
	switch cfg.Provider {
	case "resend":
		return NewResendMailer(cfg.ResendAPIKey, cfg.FromEmail), nil
	case "smtp":
		return NewSMTPMailer(cfg), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// SMTPMailer delivers through a plain SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg MailerConfig) *SMTPMailer {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return &SMTPMailer{
		dialer: dialer,
		from:   cfg.FromEmail,
	}
}

func (sm *SMTPMailer) Send(email OutgoingEmail) (string, error) {
	messageID := uuid.NewString()

	m := gomail.NewMessage()
	m.SetHeader("From", sm.from)
	m.SetHeader("To", email.To)
	m.SetHeader("Subject", email.Subject)
	m.SetHeader("Message-ID", fmt.Sprintf("<%s@waitlist>", messageID))
	m.SetHeader("Date", time.Now().Format(time.RFC1123Z))
	m.SetBody("text/html", withPreheader(email.HTMLContent, email.PreviewText))

	if err := sm.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp send failed: %w", err)
	}
	return messageID, nil
}

// withPreheader prepends the hidden inbox-preview snippet most clients show
// next to the subject line.
func withPreheader(html, previewText string) string {
	if previewText == "" {
		return html
	}
	preheader := fmt.Sprintf(
		`<div style="display:none;max-height:0;overflow:hidden;">%s</div>`,
		previewText,
	)
	return preheader + html
}
