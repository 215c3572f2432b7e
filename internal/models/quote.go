package models

import "time"

// Quote statuses. "abgelaufen" is derived for display only, see
// DisplayStatus; it is never written to the database.
const (
	QuoteDraft    = "entwurf"
	QuoteSent     = "versendet"
	QuoteAccepted = "angenommen"
	QuoteRejected = "abgelehnt"
	QuoteExpired  = "abgelaufen"
)

// Line kinds used to group quote positions on the printed document.
const (
	QuoteLineLabor = "arbeit"
	QuoteLinePart  = "teil"
	QuoteLineOther = "sonstiges"
)

// Quote (Kostenvoranschlag).
type Quote struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Number      string     `gorm:"not null;uniqueIndex" json:"kvNummer"`
	Title       string     `gorm:"not null" json:"titel"`
	Description string     `json:"beschreibung"`
	IssueDate   time.Time  `json:"datum"`
	ValidUntil  *time.Time `json:"gueltigBis"`
	Status      string     `gorm:"not null;default:'entwurf'" json:"status"`

	NetTotal        float64 `json:"nettoGesamt"`
	TaxRate         float64 `json:"mwstSatz"`
	TaxAmount       float64 `json:"mwstBetrag"`
	GrossTotal      float64 `json:"bruttoGesamt"`
	DiscountPercent float64 `json:"rabattProzent"`
	DiscountAmount  float64 `json:"rabattBetrag"`

	Notes string `json:"notizen"`

	CustomerID  uint       `gorm:"not null;index" json:"kundeId"`
	Customer    Customer   `gorm:"foreignKey:CustomerID" json:"kunde,omitempty"`
	VehicleID   *uint      `gorm:"index" json:"fahrzeugId"`
	Vehicle     *Vehicle   `gorm:"foreignKey:VehicleID" json:"fahrzeug,omitempty"`
	WorkOrderID *uint      `gorm:"index" json:"vorgangId"`
	WorkOrder   *WorkOrder `gorm:"foreignKey:WorkOrderID" json:"vorgang,omitempty"`

	Lines []QuoteLine `gorm:"foreignKey:QuoteID" json:"positionen,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayStatus maps a sent quote past its validity date to
// "abgelaufen". All other states pass through unchanged.
func (q Quote) DisplayStatus(now time.Time) string {
	if q.Status == QuoteSent && q.ValidUntil != nil && q.ValidUntil.Before(now) {
		return QuoteExpired
	}
	return q.Status
}

// QuoteLine is one priced row of a quote, tagged with a kind for
// grouped rendering (labor / parts / other).
type QuoteLine struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	QuoteID     uint    `gorm:"not null;index" json:"kostenvoranschlagId"`
	Position    int     `gorm:"not null" json:"position"`
	Kind        string  `gorm:"not null;default:'arbeit'" json:"typ"`
	Description string  `gorm:"not null" json:"beschreibung"`
	Quantity    float64 `json:"menge"`
	Unit        string  `json:"einheit"`
	UnitPrice   float64 `json:"einzelpreis"`
	LineTotal   float64 `json:"gesamtpreis"`
}
