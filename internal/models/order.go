package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusPendiente     OrderStatus = "Pendiente"
	StatusEnProduccion  OrderStatus = "En Producción"
	StatusListoDespacho OrderStatus = "Listo para Despacho"
	StatusEnviado       OrderStatus = "Enviado"
	StatusFacturado     OrderStatus = "Facturado"
)

type OrderType string

const (
	OrderVenta    OrderType = "venta"    // venta de café propio
	OrderServicio OrderType = "servicio" // servicio de tueste sobre café del cliente
)

// Order: pedido de un cliente. Para pedidos de servicio, QuantityKg se
// reescribe con el rendimiento real del tueste (el entregable se define por
// resultado, no por la estimación inicial).
type Order struct {
	ID                   string          `gorm:"size:36;primaryKey" json:"id"`
	ClientName           string          `gorm:"size:120;index;not null" json:"client_name"`
	ClientPhone          string          `gorm:"size:30" json:"client_phone"`
	Variety              string          `gorm:"size:120" json:"variety"`
	Type                 OrderType       `gorm:"size:20;not null" json:"type"`
	QuantityKg           float64         `gorm:"not null" json:"quantity_kg"`
	Status               OrderStatus     `gorm:"size:30;index;not null" json:"status"`
	Progress             int             `gorm:"not null;default:0" json:"progress"` // 0–100
	EntryDate            time.Time       `gorm:"index;not null" json:"entry_date"`
	DueDate              *time.Time      `json:"due_date"`
	FulfilledFromStockID *string         `gorm:"size:36" json:"fulfilled_from_stock_id"`
	RelatedRoastIDs      StringList      `gorm:"type:text" json:"related_roast_ids"`
	ShippedDate          *time.Time      `json:"shipped_date"`
	InvoicedDate         *time.Time      `json:"invoiced_date"`
	ShippingCost         decimal.Decimal `gorm:"type:decimal(12,2)" json:"shipping_cost"`
	PackagingType        string          `gorm:"size:60" json:"packaging_type"`
	BagsUsed             int             `json:"bags_used"`
	Note                 string          `gorm:"size:255" json:"note"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (o Order) PrimaryID() string      { return o.ID }
func (o Order) LastUpdated() time.Time { return o.UpdatedAt }
