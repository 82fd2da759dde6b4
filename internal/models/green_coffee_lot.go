package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GreenCoffeeLot: lote de café verde ingresado por un cliente.
// QuantityKg es el peso restante; el tueste lo va descontando.
// Nunca se borra, solo se drena hasta cero.
type GreenCoffeeLot struct {
	ID         string          `gorm:"size:36;primaryKey" json:"id"`
	ClientName string          `gorm:"size:120;index;not null" json:"client_name"`
	Variety    string          `gorm:"size:120;not null" json:"variety"`
	Origin     string          `gorm:"size:120" json:"origin"`
	EntryDate  time.Time       `gorm:"index;not null" json:"entry_date"`
	QuantityKg float64         `gorm:"not null" json:"quantity_kg"`
	PricePerKg decimal.Decimal `gorm:"type:decimal(12,2)" json:"price_per_kg"`
	Note       string          `gorm:"size:255" json:"note"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (l GreenCoffeeLot) PrimaryID() string      { return l.ID }
func (l GreenCoffeeLot) LastUpdated() time.Time { return l.UpdatedAt }
