package models

import "time"

// Customer (Kunde). Private customers carry a salutation, business
// customers a company name; both may be present.
type Customer struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Salutation string `json:"anrede"`
	FirstName  string `gorm:"not null" json:"vorname"`
	LastName   string `gorm:"not null;index" json:"nachname"`
	Company    string `json:"firma"`
	Street     string `json:"strasse"`
	HouseNo    string `json:"hausnummer"`
	PostalCode string `json:"plz"`
	City       string `json:"ort"`
	Phone      string `json:"telefon"`
	Mobile     string `json:"mobil"`
	Email      string `json:"email"`
	Notes      string `json:"notizen"`

	Vehicles []Vehicle `gorm:"foreignKey:CustomerID" json:"fahrzeuge,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName is the name printed on documents: company if set,
// otherwise "Vorname Nachname".
func (c Customer) DisplayName() string {
	if c.Company != "" {
		return c.Company
	}
	return c.FirstName + " " + c.LastName
}

// FullName always returns the personal name.
func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}
