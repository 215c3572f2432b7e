package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/mfreund/werkstatt/internal/compose"
	"github.com/mfreund/werkstatt/internal/config"
	"github.com/mfreund/werkstatt/internal/models"
)

// Message is the subject/plain-text/HTML triple handed to the mailer.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

var invoiceHTMLTmpl = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
    .container { max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { background: #374151; color: white; padding: 20px; text-align: center; }
    .content { padding: 20px; background: #f9fafb; }
    .info-box { background: white; padding: 15px; margin: 15px 0; border-radius: 8px; border-left: 4px solid #374151; }
    .total { font-size: 1.2em; font-weight: bold; color: #374151; }
    .footer { text-align: center; padding: 20px; font-size: 0.9em; color: #666; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{.IssuerName}}</h1>
    </div>
    <div class="content">
      <p>Sehr geehrte(r) {{.CustomerName}},</p>
      <p>anbei erhalten Sie Ihre Rechnung Nr. <strong>{{.Number}}</strong>.</p>

      <div class="info-box">
        {{if .VehicleInfo}}<p><strong>Fahrzeug:</strong> {{.VehicleInfo}}</p>{{end}}
        <p class="total">Gesamtbetrag: {{.GrossTotal}}</p>
      </div>

      <p>Bei Fragen stehen wir Ihnen gerne zur Verfügung.</p>

      <p>Mit freundlichen Grüßen<br>
      <strong>{{.IssuerName}}</strong></p>
    </div>
    <div class="footer">
      <p>{{.IssuerName}} • {{.IssuerAddress}}<br>
      {{.IssuerContact}}</p>
    </div>
  </div>
</body>
</html>`))

// BuildInvoiceMail renders subject, plain text and HTML body for
// sending an invoice. The PDF attachment is produced separately by the
// caller from the composed page tree.
func BuildInvoiceMail(inv models.Invoice, issuer config.Issuer) (Message, error) {
	customerName := inv.Customer.DisplayName()
	vehicleInfo := ""
	if inv.Vehicle != nil {
		vehicleInfo = inv.Vehicle.Label()
	}
	gross := compose.FormatEUR(inv.GrossTotal)

	subject := "Ihre Rechnung Nr. " + inv.Number

	var text strings.Builder
	fmt.Fprintf(&text, "Sehr geehrte(r) %s,\n\n", customerName)
	fmt.Fprintf(&text, "anbei erhalten Sie Ihre Rechnung Nr. %s.\n\n", inv.Number)
	if vehicleInfo != "" {
		fmt.Fprintf(&text, "Fahrzeug: %s\n", vehicleInfo)
	}
	fmt.Fprintf(&text, "Gesamtbetrag: %s\n\n", gross)
	text.WriteString("Bei Fragen stehen wir Ihnen gerne zur Verfügung.\n\n")
	fmt.Fprintf(&text, "Mit freundlichen Grüßen\n%s", issuer.Name)

	var html bytes.Buffer
	err := invoiceHTMLTmpl.Execute(&html, map[string]string{
		"IssuerName":    issuer.Name,
		"IssuerAddress": issuer.AddressLine(),
		"IssuerContact": issuer.ContactLine(),
		"CustomerName":  customerName,
		"Number":        inv.Number,
		"VehicleInfo":   vehicleInfo,
		"GrossTotal":    gross,
	})
	if err != nil {
		return Message{}, fmt.Errorf("render invoice mail: %w", err)
	}

	return Message{Subject: subject, Text: text.String(), HTML: html.String()}, nil
}

// AttachmentName is the file name of the PDF attached to an invoice mail.
func AttachmentName(number string) string {
	return "Rechnung-" + number + ".pdf"
}
