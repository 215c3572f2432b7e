package email

import (
	"strings"
	"testing"

	"github.com/mfreund/werkstatt/internal/config"
	"github.com/mfreund/werkstatt/internal/models"
)

func TestBuildInvoiceMail(t *testing.T) {
	inv := models.Invoice{
		Number:     "2024-0042",
		GrossTotal: 535.50,
		Customer:   models.Customer{FirstName: "Max", LastName: "Mustermann", Email: "max@example.com"},
		Vehicle:    &models.Vehicle{Plate: "B-MM 1234", Make: "Volkswagen", Model: "Golf 8"},
	}
	issuer := config.Issuer{
		Name: "Kfz-Meisterbetrieb Weiterstadt", Street: "Im Rödling 9a",
		PostalCode: "64331", City: "Weiterstadt", Phone: "0173 2344338",
		Email: "info@kfz-weiterstadt.de",
	}

	msg, err := BuildInvoiceMail(inv, issuer)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if msg.Subject != "Ihre Rechnung Nr. 2024-0042" {
		t.Errorf("subject = %q", msg.Subject)
	}
	for _, want := range []string{"Max Mustermann", "2024-0042", "535,50 €", "B-MM 1234 - Volkswagen Golf 8"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("text missing %q", want)
		}
		if !strings.Contains(msg.HTML, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestBuildInvoiceMailWithoutVehicle(t *testing.T) {
	inv := models.Invoice{
		Number:     "2024-0001",
		GrossTotal: 100,
		Customer:   models.Customer{Company: "Schmidt Transporte GmbH", FirstName: "Thomas", LastName: "Schmidt"},
	}
	msg, err := BuildInvoiceMail(inv, config.Issuer{Name: "Werkstatt"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if strings.Contains(msg.Text, "Fahrzeug") || strings.Contains(msg.HTML, "Fahrzeug") {
		t.Error("vehicle line present without vehicle")
	}
	if !strings.Contains(msg.Text, "Schmidt Transporte GmbH") {
		t.Error("company name missing in salutation")
	}
}

func TestDisabledMailer(t *testing.T) {
	m, err := NewMailer(config.Config{})
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	if m.Enabled() {
		t.Fatal("mailer enabled without smtp config")
	}
	if err := m.Send("a@b.c", Message{Subject: "x"}, nil, ""); err != ErrNotConfigured {
		t.Fatalf("send on disabled mailer: %v", err)
	}
}

func TestAttachmentName(t *testing.T) {
	if got := AttachmentName("2024-0042"); got != "Rechnung-2024-0042.pdf" {
		t.Errorf("attachment name = %q", got)
	}
}
