package models

import "time"

// Work order statuses. A work order becomes "abgerechnet" when an
// invoice links it and can no longer be deleted or detached.
const (
	WorkOrderOpen       = "offen"
	WorkOrderInProgress = "in_arbeit"
	WorkOrderDone       = "fertig"
	WorkOrderInvoiced   = "abgerechnet"
)

// WorkOrder (Vorgang): one repair job on one vehicle.
type WorkOrder struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Number         string     `gorm:"not null;uniqueIndex" json:"vorgangsnummer"`
	Title          string     `gorm:"not null" json:"titel"`
	Description    string     `json:"beschreibung"`
	IntakeDate     time.Time  `json:"eingang"`
	CompletedDate  *time.Time `json:"fertiggestellt"`
	OdometerIntake int        `json:"kmStandEingang"`
	Status         string     `gorm:"not null;default:'offen'" json:"status"`
	Notes          string     `json:"notizen"`

	CustomerID uint     `gorm:"not null;index" json:"kundeId"`
	Customer   Customer `gorm:"foreignKey:CustomerID" json:"kunde,omitempty"`
	VehicleID  uint     `gorm:"not null;index" json:"fahrzeugId"`
	Vehicle    Vehicle  `gorm:"foreignKey:VehicleID" json:"fahrzeug,omitempty"`

	Items []WorkItem `gorm:"foreignKey:WorkOrderID" json:"arbeiten,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WorkItem is one priced work step. Same line shape as invoice lines
// plus a per-item progress status; owned exclusively by its work order.
type WorkItem struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	WorkOrderID uint    `gorm:"not null;index" json:"vorgangId"`
	Position    int     `gorm:"not null" json:"position"`
	Description string  `gorm:"not null" json:"beschreibung"`
	Status      string  `gorm:"not null;default:'offen'" json:"status"`
	Quantity    float64 `json:"menge"`
	Unit        string  `json:"einheit"`
	UnitPrice   float64 `json:"einzelpreis"`
	LineTotal   float64 `json:"gesamtpreis"`
	Notes       string  `json:"notizen"`
}

// InvoiceWorkOrder links an invoice to the work orders it bills.
type InvoiceWorkOrder struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	InvoiceID   uint      `gorm:"not null;index:idx_invoice_workorder,unique" json:"rechnungId"`
	WorkOrderID uint      `gorm:"not null;index:idx_invoice_workorder,unique" json:"vorgangId"`
	WorkOrder   WorkOrder `gorm:"foreignKey:WorkOrderID" json:"vorgang,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}
