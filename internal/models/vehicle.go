package models

import "time"

// Vehicle (Fahrzeug) belongs to exactly one customer.
type Vehicle struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Plate             string     `gorm:"not null;uniqueIndex" json:"kennzeichen"`
	Make              string     `gorm:"not null" json:"marke"`
	Model             string     `gorm:"not null" json:"modell"`
	BuildYear         int        `json:"baujahr"`
	VIN               string     `json:"fahrgestellnr"`
	FirstRegistration *time.Time `json:"erstzulassung"`
	NextInspection    *time.Time `json:"naechsteHU"` // HU/TÜV due date
	Odometer          int        `json:"kilometerstand"`
	Color             string     `json:"farbe"`
	Fuel              string     `json:"kraftstoff"`

	CustomerID uint     `gorm:"not null;index" json:"kundeId"`
	Customer   Customer `gorm:"foreignKey:CustomerID" json:"kunde,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Label renders "Kennzeichen - Marke Modell" for lists and emails.
func (v Vehicle) Label() string {
	return v.Plate + " - " + v.Make + " " + v.Model
}
