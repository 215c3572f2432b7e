// Package email sends finished invoices to customers: subject, plain
// text and HTML body are built from the invoice, the rendered PDF is
// attached, delivery goes through SMTP.
package email

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/url"

	"github.com/mfreund/werkstatt/internal/config"

	"github.com/dajohi/goemail"
)

// Mailer wraps an SMTP client for sending from a fixed address. When
// SMTP is not configured the mailer is disabled and Send reports it.
type Mailer struct {
	client   *goemail.SMTP
	from     string
	disabled bool
}

// ErrNotConfigured is returned by Send when SMTP settings are missing.
var ErrNotConfigured = fmt.Errorf("smtp is not configured")

// NewMailer builds a mailer from SMTP_* settings. Missing host or user
// yields a disabled mailer rather than an error, so the application
// runs without mail in development.
func NewMailer(cfg config.Config) (*Mailer, error) {
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" {
		log.Println("[MAIL] SMTP not configured, mail delivery disabled")
		return &Mailer{disabled: true}, nil
	}
	u, err := url.Parse(fmt.Sprintf("smtps://%s:%s@%s", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost))
	if err != nil {
		return nil, fmt.Errorf("parse smtp host: %w", err)
	}
	client, err := goemail.NewSMTP(u.String(), &tls.Config{})
	if err != nil {
		return nil, fmt.Errorf("init smtp client: %w", err)
	}
	return &Mailer{client: client, from: cfg.SMTPFrom}, nil
}

// Enabled reports whether mail can actually be delivered.
func (m *Mailer) Enabled() bool { return !m.disabled }

// Send delivers one HTML message with an optional PDF attachment.
func (m *Mailer) Send(to string, msg Message, attachment []byte, filename string) error {
	if m.disabled {
		return ErrNotConfigured
	}
	out := goemail.NewHTMLMessage(m.from, msg.Subject, msg.HTML)
	out.AddTo(to)
	if len(attachment) > 0 {
		out.AddAttachment(filename, attachment)
	}
	return m.client.Send(out)
}
