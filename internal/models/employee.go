package models

import "time"

// Employee (Mitarbeiter).
type Employee struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PersonnelNumber string    `gorm:"not null;uniqueIndex" json:"personalnummer"`
	FirstName       string    `gorm:"not null" json:"vorname"`
	LastName        string    `gorm:"not null;index" json:"nachname"`
	Email           string    `json:"email"`
	Phone           string    `json:"telefon"`
	Role            string    `gorm:"default:'mechaniker'" json:"rolle"`
	HourlyRate      float64   `json:"stundensatz"`
	Active          bool      `gorm:"default:true" json:"aktiv"`
	StartDate       time.Time `json:"eintrittsdatum"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
