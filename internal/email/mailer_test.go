package email

import (
	"errors"
	"testing"

	"github.com/mfreund/werkstatt/internal/config"
)

func TestMailerDisabledWithoutSMTPConfig(t *testing.T) {
	m, err := NewMailer(config.Config{})
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	if m.Enabled() {
		t.Fatal("expected disabled mailer")
	}
	err = m.Send("max@example.com", Message{Subject: "Ihre Rechnung Nr. 2024-0042"}, []byte("%PDF-1.7"), "Rechnung_2024-0042.pdf")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured got %v", err)
	}
}

func TestMailerEnabledWithSMTPConfig(t *testing.T) {
	m, err := NewMailer(config.Config{
		SMTPHost: "smtp.example.com:465",
		SMTPUser: "werkstatt",
		SMTPPass: "geheim",
		SMTPFrom: "rechnung@kfz-weiterstadt.de",
	})
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	if !m.Enabled() {
		t.Fatal("expected enabled mailer")
	}
}
