package models

import "time"

// Part (Ersatzteil) in the shop's own inventory.
type Part struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	ArticleNumber string  `gorm:"not null;uniqueIndex" json:"artikelnummer"`
	Designation   string  `gorm:"not null;index" json:"bezeichnung"`
	Description   string  `json:"beschreibung"`
	Category      string  `json:"kategorie"`
	Manufacturer  string  `json:"hersteller"`
	PurchasePrice float64 `json:"einkaufspreis"`
	SalePrice     float64 `json:"verkaufspreis"`
	Stock         int     `json:"bestand"`
	MinimumStock  int     `json:"mindestbestand"`
	StorageLoc    string  `json:"lagerort"`
	VehicleMakes  string  `json:"fahrzeugMarken"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Margin is the per-unit difference between sale and purchase price.
func (p Part) Margin() float64 {
	return p.SalePrice - p.PurchasePrice
}

// NeedsReorder reports whether stock has fallen to the threshold.
func (p Part) NeedsReorder() bool {
	return p.Stock <= p.MinimumStock
}
