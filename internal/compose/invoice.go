package compose

import (
	"fmt"
	"time"

	"github.com/mfreund/werkstatt/internal/config"
	"github.com/mfreund/werkstatt/internal/models"
)

// ComposeInvoice projects a fully resolved invoice (customer, optional
// vehicle and ordered lines preloaded) onto the page tree. The issuer
// record supplies letterhead, bank and tax data; nothing is looked up.
func ComposeInvoice(inv models.Invoice, issuer config.Issuer) Document {
	doc := Document{Title: "RECHNUNG", Number: inv.Number}

	due := dueDate(inv, issuer)
	doc.Blocks = append(doc.Blocks,
		HeaderBand{IssuerName: issuer.Name, Tagline: issuer.Tagline, Title: doc.Title, Number: "Nr. " + inv.Number},
		senderLine(issuer),
		addressBlock(inv.Customer, "Rechnungsempfänger", "Rechnungsdatum", inv.IssueDate, "Fällig bis", &due),
	)
	if vb, ok := vehicleBlock(inv.Vehicle); ok {
		doc.Blocks = append(doc.Blocks, vb)
	}

	doc.Blocks = append(doc.Blocks, lineTableHead())
	for i, l := range inv.Lines {
		doc.Blocks = append(doc.Blocks, lineRow(l.Position, l.Description, l.Quantity, l.Unit, l.UnitPrice, l.LineTotal, i%2 == 1))
	}

	doc.Blocks = append(doc.Blocks, totalsBlock(
		inv.NetTotal, inv.DiscountPercent, inv.DiscountAmount, inv.TaxRate, inv.TaxAmount, inv.GrossTotal,
	))

	doc.Blocks = append(doc.Blocks, paymentBlock(inv, issuer))

	if inv.Notes != "" {
		doc.Blocks = append(doc.Blocks, NotesBlock{Title: "Hinweise", Text: inv.Notes})
	}

	doc.Blocks = append(doc.Blocks, footerBand(issuer))
	return doc
}

// dueDate returns the explicit due date or issue date plus the
// configured payment term.
func dueDate(inv models.Invoice, issuer config.Issuer) time.Time {
	if inv.DueDate != nil {
		return *inv.DueDate
	}
	return inv.IssueDate.AddDate(0, 0, issuer.PaymentTermDays)
}

func paymentBlock(inv models.Invoice, issuer config.Issuer) PaymentBlock {
	b := PaymentBlock{
		Title: "Zahlungsinformationen",
		Rows: []PaymentRow{
			{Label: "Empfänger:", Value: issuer.PaymentRecipient()},
			{Label: "Bank:", Value: issuer.BankName},
			{Label: "IBAN:", Value: issuer.IBAN, Emph: true},
		},
	}
	if issuer.BIC != "" {
		b.Rows = append(b.Rows, PaymentRow{Label: "BIC:", Value: issuer.BIC})
	}
	b.Rows = append(b.Rows, PaymentRow{Label: "Verwendungszweck:", Value: "Rechnung " + inv.Number})
	if issuer.SkontoPercent > 0 {
		discounted := inv.GrossTotal * (1 - issuer.SkontoPercent/100)
		b.SkontoNote = fmt.Sprintf(
			"Bei Zahlung innerhalb von %d Tagen gewähren wir %s%% Skonto (%s)",
			issuer.SkontoDays, FormatPercent(issuer.SkontoPercent), FormatEUR(discounted),
		)
	}
	return b
}

// Shared block builders used by invoice and quote composition.

func senderLine(issuer config.Issuer) SenderLine {
	return SenderLine{Text: issuer.Name + " • " + issuer.Street + " • " + issuer.PostalCode + " " + issuer.City}
}

func addressBlock(c models.Customer, recipientLabel, dateLabel string, date time.Time, dueLabel string, due *time.Time) AddressBlock {
	b := AddressBlock{
		RecipientLabel: recipientLabel,
		Name:           c.DisplayName(),
		Street:         c.Street + " " + c.HouseNo,
		City:           c.PostalCode + " " + c.City,
		DateLabel:      dateLabel,
		Date:           FormatDate(date),
	}
	if c.Company != "" {
		b.Person = c.FullName()
	}
	if due != nil {
		b.DueLabel = dueLabel
		b.Due = FormatDate(*due)
	}
	return b
}

func vehicleBlock(v *models.Vehicle) (VehicleBlock, bool) {
	if v == nil {
		return VehicleBlock{}, false
	}
	details := v.Make + " " + v.Model
	if v.VIN != "" {
		details += " • FIN: " + v.VIN
	}
	if v.Odometer > 0 {
		details += " • " + FormatKM(v.Odometer)
	}
	return VehicleBlock{Title: "Fahrzeugdaten", Plate: v.Plate, Details: details}, true
}

func lineTableHead() TableHead {
	return TableHead{
		Position:    "Pos",
		Description: "Beschreibung",
		Quantity:    "Menge",
		Unit:        "Einheit",
		UnitPrice:   "Einzelpreis",
		LineTotal:   "Gesamt",
	}
}

func lineRow(pos int, desc string, qty float64, unit string, unitPrice, lineTotal float64, shaded bool) TableRow {
	return TableRow{
		Position:    fmt.Sprintf("%d", pos),
		Description: desc,
		Quantity:    FormatQuantity(qty),
		Unit:        unit,
		UnitPrice:   FormatEUR(unitPrice),
		LineTotal:   FormatEUR(lineTotal),
		Shaded:      shaded,
	}
}

func totalsBlock(net, discountPercent, discountAmount, taxRate, taxAmount, gross float64) TotalsBlock {
	// The subtotal row shows the net before discount so the printed
	// column adds up: subtotal - discount + tax = total.
	b := TotalsBlock{
		SubtotalLabel: "Zwischensumme (Netto)",
		Subtotal:      FormatEUR(net + discountAmount),
		TaxLabel:      "MwSt. " + FormatPercent(taxRate) + "%",
		Tax:           FormatEUR(taxAmount),
		GrandLabel:    "Gesamtbetrag",
		Grand:         FormatEUR(gross),
	}
	if discountAmount > 0 {
		b.DiscountLabel = "Rabatt (" + FormatPercent(discountPercent) + "%)"
		b.Discount = "-" + FormatEUR(discountAmount)
	}
	return b
}

func footerBand(issuer config.Issuer) FooterBand {
	f := FooterBand{
		ContactTitle: "Kontakt",
		Contact:      []string{issuer.Name, issuer.Street, issuer.PostalCode + " " + issuer.City},
		BankTitle:    "Bankverbindung",
		Bank:         []string{issuer.BankName, "IBAN: " + issuer.IBAN},
		TaxTitle:     "Steuerdaten",
	}
	if issuer.Phone != "" {
		f.Contact = append(f.Contact, "Tel: "+issuer.Phone)
	}
	if issuer.BIC != "" {
		f.Bank = append(f.Bank, "BIC: "+issuer.BIC)
	}
	if issuer.TaxNumber != "" {
		f.Tax = append(f.Tax, "St.-Nr.: "+issuer.TaxNumber)
	}
	if issuer.VATID != "" {
		f.Tax = append(f.Tax, "USt-IdNr.: "+issuer.VATID)
	}
	if issuer.Owner != "" {
		f.Tax = append(f.Tax, "Inhaber: "+issuer.Owner)
	}
	switch {
	case issuer.Email != "" && issuer.Website != "":
		f.ClosingLine = issuer.Email + " • " + issuer.Website
	case issuer.Email != "":
		f.ClosingLine = issuer.Email
	default:
		f.ClosingLine = issuer.Website
	}
	return f
}
