package config

import "strings"

// Issuer is the static identity of the shop as printed on every
// generated document: letterhead, bank details, tax registration and
// payment terms. It is loaded once and passed explicitly to the
// document composer so composition stays free of ambient state.
type Issuer struct {
	Name    string
	Tagline string

	Street     string
	PostalCode string
	City       string

	Phone   string
	Fax     string
	Email   string
	Website string

	BankName      string
	IBAN          string
	BIC           string
	AccountHolder string

	TaxNumber string
	VATID     string
	Owner     string

	// PaymentTermDays is added to the issue date when an invoice has no
	// explicit due date.
	PaymentTermDays int

	// SkontoPercent > 0 enables the early-payment discount note on
	// invoices, granted when paid within SkontoDays.
	SkontoPercent float64
	SkontoDays    int

	OpeningHours string
}

// LoadIssuer reads the shop identity from the environment. Defaults
// match the shop this application was written for.
func LoadIssuer() Issuer {
	return Issuer{
		Name:            getEnv("ISSUER_NAME", "Kfz-Meisterbetrieb Weiterstadt"),
		Tagline:         getEnv("ISSUER_TAGLINE", "Ihr Partner für alle Fahrzeuge"),
		Street:          getEnv("ISSUER_STREET", "Im Rödling 9a"),
		PostalCode:      getEnv("ISSUER_POSTAL_CODE", "64331"),
		City:            getEnv("ISSUER_CITY", "Weiterstadt"),
		Phone:           getEnv("ISSUER_PHONE", "0173 2344338"),
		Fax:             getEnv("ISSUER_FAX", ""),
		Email:           getEnv("ISSUER_EMAIL", "info@kfz-weiterstadt.de"),
		Website:         getEnv("ISSUER_WEBSITE", "www.kfz-weiterstadt.de"),
		BankName:        getEnv("ISSUER_BANK", "Sparkasse Darmstadt"),
		IBAN:            getEnv("ISSUER_IBAN", "DE89 5085 0150 0000 1234 56"),
		BIC:             getEnv("ISSUER_BIC", "HELADEF1DAS"),
		AccountHolder:   getEnv("ISSUER_ACCOUNT_HOLDER", "Kfz-Meisterbetrieb Weiterstadt"),
		TaxNumber:       getEnv("ISSUER_TAX_NUMBER", "012/345/67890"),
		VATID:           getEnv("ISSUER_VAT_ID", "DE123456789"),
		Owner:           getEnv("ISSUER_OWNER", "Max Mustermann"),
		PaymentTermDays: ParseInt("ISSUER_PAYMENT_TERM_DAYS", 14),
		SkontoPercent:   ParseFloat("ISSUER_SKONTO_PERCENT", 2),
		SkontoDays:      ParseInt("ISSUER_SKONTO_DAYS", 7),
		OpeningHours:    getEnv("ISSUER_OPENING_HOURS", "Mo-Fr 8:00-18:00 Uhr, Sa 9:00-13:00 Uhr"),
	}
}

// PaymentRecipient is the account holder, falling back to the shop name.
func (i Issuer) PaymentRecipient() string {
	if i.AccountHolder != "" {
		return i.AccountHolder
	}
	return i.Name
}

// AddressLine renders "Straße, PLZ Ort" for single-line use.
func (i Issuer) AddressLine() string {
	return i.Street + ", " + i.PostalCode + " " + i.City
}

// ContactLine joins phone, email and website for the letterhead.
func (i Issuer) ContactLine() string {
	var parts []string
	for _, p := range []string{i.Phone, i.Email, i.Website} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " • ")
}
