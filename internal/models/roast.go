package models

import "time"

// Roast: un evento de tueste. Registro inmutable de auditoría: una vez
// creado no se modifica, la trazabilidad depende de eso.
type Roast struct {
	ID            string    `gorm:"size:36;primaryKey" json:"id"`
	ClientName    string    `gorm:"size:120;index" json:"client_name"`
	GreenCoffeeID string    `gorm:"size:36;index;not null" json:"green_coffee_id"`
	GreenQtyKg    float64   `gorm:"not null" json:"green_qty_kg"`
	RoastedQtyKg  float64   `gorm:"not null" json:"roasted_qty_kg"`
	WeightLossPct float64   `gorm:"not null" json:"weight_loss_percentage"`
	Profile       string    `gorm:"size:60" json:"profile"` // claro, medio, oscuro...
	RoastDate     time.Time `gorm:"index;not null" json:"roast_date"`
	OrderID       *string   `gorm:"size:36;index" json:"order_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (r Roast) PrimaryID() string      { return r.ID }
func (r Roast) LastUpdated() time.Time { return r.UpdatedAt }
