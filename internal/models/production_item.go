package models

import "time"

type ProductionItemType string

const (
	ItemUnidad     ProductionItemType = "unidad"     // se cuenta por unidades
	ItemPorcentaje ProductionItemType = "porcentaje" // se recarga a 100%
)

// ProductionItem: insumo de producción (bolsas, etiquetas, gas...).
// Format enlaza el insumo con un formato de envasado para descontarlo
// automáticamente al producir bolsas; el descuento es informativo, se
// trunca en cero y nunca bloquea el envasado.
type ProductionItem struct {
	ID           string             `gorm:"size:36;primaryKey" json:"id"`
	Name         string             `gorm:"size:120;not null" json:"name"`
	Type         ProductionItemType `gorm:"size:20;not null;default:unidad" json:"type"`
	Quantity     float64            `gorm:"not null;default:0" json:"quantity"`
	MinThreshold float64            `gorm:"not null;default:0" json:"min_threshold"`
	Format       *BagFormat         `gorm:"size:10" json:"format"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func (p ProductionItem) PrimaryID() string      { return p.ID }
func (p ProductionItem) LastUpdated() time.Time { return p.UpdatedAt }

// LowStock indica si el insumo está bajo su umbral mínimo.
func (p ProductionItem) LowStock() bool { return p.Quantity <= p.MinThreshold }
