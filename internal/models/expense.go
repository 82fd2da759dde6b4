package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseStatus string

const (
	ExpensePendiente ExpenseStatus = "pendiente"
	ExpensePagado    ExpenseStatus = "pagado"
)

// Expense: gasto operacional. El despacho de un pedido con costo > 0 crea
// uno automáticamente, pendiente y vinculado al pedido.
type Expense struct {
	ID             string          `gorm:"size:36;primaryKey" json:"id"`
	Reason         string          `gorm:"size:255;not null" json:"reason"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Date           time.Time       `gorm:"index;not null" json:"date"`
	DocumentType   string          `gorm:"size:30" json:"document_type"` // boleta, factura...
	DocumentID     string          `gorm:"size:60" json:"document_id"`
	Status         ExpenseStatus   `gorm:"size:20;index;not null;default:pendiente" json:"status"`
	RelatedOrderID *string         `gorm:"size:36;index" json:"related_order_id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (e Expense) PrimaryID() string      { return e.ID }
func (e Expense) LastUpdated() time.Time { return e.UpdatedAt }
