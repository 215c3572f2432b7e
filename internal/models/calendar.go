package models

import "time"

// CalendarEntry is an appointment in the shop calendar, optionally
// bound to a vehicle (and through it to a customer).
type CalendarEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"titel"`
	Description string    `json:"beschreibung"`
	Start       time.Time `gorm:"not null;index" json:"startDatum"`
	End         time.Time `gorm:"not null" json:"endDatum"`
	AllDay      bool      `json:"ganztaegig"`
	Category    string    `json:"kategorie"`

	VehicleID *uint    `gorm:"index" json:"fahrzeugId"`
	Vehicle   *Vehicle `gorm:"foreignKey:VehicleID" json:"fahrzeug,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
