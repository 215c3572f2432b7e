package models

import "time"

// Invoice statuses.
const (
	InvoiceOpen     = "offen"
	InvoicePaid     = "bezahlt"
	InvoiceCanceled = "storniert"
)

// Invoice (Rechnung). Totals are stored, not recomputed on read; the
// service layer derives them from the lines at write time so the
// round-once invariants hold.
type Invoice struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Number    string     `gorm:"not null;uniqueIndex" json:"rechnungsnummer"`
	IssueDate time.Time  `json:"datum"`
	DueDate   *time.Time `json:"faelligBis"`
	Status    string     `gorm:"not null;default:'offen'" json:"status"`

	NetTotal        float64 `json:"nettoGesamt"`
	TaxRate         float64 `json:"mwstSatz"`
	TaxAmount       float64 `json:"mwstBetrag"`
	GrossTotal      float64 `json:"bruttoGesamt"`
	DiscountPercent float64 `json:"rabattProzent"`
	DiscountAmount  float64 `json:"rabattBetrag"`

	Notes string `json:"notizen"`

	CustomerID uint     `gorm:"not null;index" json:"kundeId"`
	Customer   Customer `gorm:"foreignKey:CustomerID" json:"kunde,omitempty"`
	VehicleID  *uint    `gorm:"index" json:"fahrzeugId"`
	Vehicle    *Vehicle `gorm:"foreignKey:VehicleID" json:"fahrzeug,omitempty"`

	Lines      []InvoiceLine      `gorm:"foreignKey:InvoiceID" json:"positionen,omitempty"`
	WorkOrders []InvoiceWorkOrder `gorm:"foreignKey:InvoiceID" json:"vorgaenge,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InvoiceLine is one billable row, exclusively owned by its invoice.
// Lines are replaced as a whole set on edit, never patched one by one.
type InvoiceLine struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	InvoiceID   uint    `gorm:"not null;index" json:"rechnungId"`
	Position    int     `gorm:"not null" json:"position"`
	Description string  `gorm:"not null" json:"beschreibung"`
	Quantity    float64 `json:"menge"`
	Unit        string  `json:"einheit"`
	UnitPrice   float64 `json:"einzelpreis"`
	LineTotal   float64 `json:"gesamtpreis"`
}
