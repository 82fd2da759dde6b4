package models

import "time"

type BagFormat string

const (
	Bag250g BagFormat = "250g"
	Bag500g BagFormat = "500g"
	Bag1kg  BagFormat = "1kg"
)

// WeightKg devuelve el peso del formato en kilos, 0 si el formato no existe.
func (f BagFormat) WeightKg() float64 {
	switch f {
	case Bag250g:
		return 0.25
	case Bag500g:
		return 0.5
	case Bag1kg:
		return 1.0
	}
	return 0
}

// RetailBagStock: unidades envasadas listas para venta al detalle.
// Se indexa por (CoffeeName, Type); el vínculo con el stock a granel de
// origen es solo por nombre de variedad, no por id (comportamiento heredado
// del sistema original, ver DESIGN.md).
type RetailBagStock struct {
	ID         string    `gorm:"size:36;primaryKey" json:"id"`
	CoffeeName string    `gorm:"size:120;index:idx_retail_bag,unique,priority:1;not null" json:"coffee_name"`
	Type       BagFormat `gorm:"size:10;index:idx_retail_bag,unique,priority:2;not null" json:"type"`
	Quantity   int       `gorm:"not null;default:0" json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (s RetailBagStock) PrimaryID() string      { return s.ID }
func (s RetailBagStock) LastUpdated() time.Time { return s.UpdatedAt }
