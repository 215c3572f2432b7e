package config

import "testing"

func TestIssuerContactLine(t *testing.T) {
	i := Issuer{Phone: "0173 2344338", Email: "info@kfz-weiterstadt.de", Website: "www.kfz-weiterstadt.de"}
	want := "0173 2344338 • info@kfz-weiterstadt.de • www.kfz-weiterstadt.de"
	if got := i.ContactLine(); got != want {
		t.Errorf("contact line = %q, want %q", got, want)
	}
}

func TestIssuerContactLineSkipsEmptySegments(t *testing.T) {
	i := Issuer{Email: "info@kfz-weiterstadt.de"}
	if got := i.ContactLine(); got != "info@kfz-weiterstadt.de" {
		t.Errorf("contact line = %q", got)
	}
	if got := (Issuer{}).ContactLine(); got != "" {
		t.Errorf("empty issuer contact line = %q", got)
	}
}

func TestIssuerPaymentRecipientFallsBackToName(t *testing.T) {
	i := Issuer{Name: "Kfz-Meisterbetrieb Weiterstadt"}
	if got := i.PaymentRecipient(); got != "Kfz-Meisterbetrieb Weiterstadt" {
		t.Errorf("recipient = %q", got)
	}
	i.AccountHolder = "Max Mustermann"
	if got := i.PaymentRecipient(); got != "Max Mustermann" {
		t.Errorf("recipient = %q", got)
	}
}
