package models

import "time"

// RoastedStock: stock a granel producido por un tueste. Es la única entidad
// con borrado físico: cuando RemainingQtyKg cae bajo el épsilon de 0.001 kg
// el registro se elimina (lote agotado) en vez de quedar como fila fantasma.
type RoastedStock struct {
	ID             string    `gorm:"size:36;primaryKey" json:"id"`
	RoastID        string    `gorm:"size:36;index;not null" json:"roast_id"`
	Variety        string    `gorm:"size:120;index;not null" json:"variety"`
	ClientName     string    `gorm:"size:120" json:"client_name"`
	TotalQtyKg     float64   `gorm:"not null" json:"total_qty_kg"`
	RemainingQtyKg float64   `gorm:"not null" json:"remaining_qty_kg"`
	IsSelected     bool      `gorm:"default:false" json:"is_selected"`
	MermaGrams     float64   `gorm:"default:0" json:"merma_grams"` // merma acumulada de selección
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (s RoastedStock) PrimaryID() string      { return s.ID }
func (s RoastedStock) LastUpdated() time.Time { return s.UpdatedAt }
