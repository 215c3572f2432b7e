package models

import "time"

// TireStorage (Reifeneinlagerung): one set of customer tires stored in
// the shop, identified by its storage slot.
type TireStorage struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SlotNumber   string     `gorm:"not null;index" json:"lagerplatznummer"`
	TireType     string     `gorm:"not null" json:"reifenTyp"` // sommer, winter, ganzjahres
	Manufacturer string     `json:"hersteller"`
	Model        string     `json:"modell"`
	Size         string     `json:"groesse"`
	DOT          string     `json:"dot"`
	TreadDepth   *float64   `json:"profiltiefe"`
	Condition    string     `gorm:"default:'gut'" json:"zustand"`
	StoredAt     time.Time  `json:"eingelagertAm"`
	NextChange   *time.Time `json:"naechsterWechsel"`
	Count        int        `gorm:"default:4" json:"anzahl"`
	WithRims     bool       `gorm:"default:true" json:"mitFelgen"`
	RimType      string     `json:"felgenTyp"`
	Notes        string     `json:"notizen"`

	CustomerID uint     `gorm:"not null;index" json:"kundeId"`
	Customer   Customer `gorm:"foreignKey:CustomerID" json:"kunde,omitempty"`
	VehicleID  uint     `gorm:"not null;index" json:"fahrzeugId"`
	Vehicle    Vehicle  `gorm:"foreignKey:VehicleID" json:"fahrzeug,omitempty"`

	ChangeHistory []TireChange `gorm:"foreignKey:TireStorageID" json:"wechselHistorie,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TireChange records one mount/dismount of a stored tire set.
type TireChange struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TireStorageID uint      `gorm:"not null;index" json:"reifeneinlagerungId"`
	Date          time.Time `json:"datum"`
	Action        string    `json:"aktion"` // eingelagert, montiert
	Notes         string    `json:"notizen"`
	CreatedAt     time.Time `json:"createdAt"`
}
