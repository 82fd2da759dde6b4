package ledger

import (
	"fmt"
	"time"

	"tostaduria-backend/internal/models"
	"tostaduria-backend/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderInput struct {
	ClientName  string
	ClientPhone string
	Variety     string
	Type        models.OrderType
	QuantityKg  float64
	EntryDate   time.Time
	DueDate     *time.Time
	Note        string
}

// CreateOrder captura la demanda de un cliente. Todo pedido nace Pendiente
// con avance 0.
func CreateOrder(s *store.Store, in OrderInput) (*models.Order, error) {
	if in.QuantityKg < 0 {
		return nil, fmt.Errorf("%w: la cantidad del pedido no puede ser negativa", ErrInvalidTransition)
	}
	if in.Type != models.OrderVenta && in.Type != models.OrderServicio {
		return nil, fmt.Errorf("%w: tipo de pedido desconocido %q", ErrInvalidTransition, in.Type)
	}
	if in.EntryDate.IsZero() {
		in.EntryDate = time.Now()
	}
	order := models.Order{
		ID:          uuid.NewString(),
		ClientName:  in.ClientName,
		ClientPhone: in.ClientPhone,
		Variety:     in.Variety,
		Type:        in.Type,
		QuantityKg:  in.QuantityKg,
		Status:      models.StatusPendiente,
		Progress:    0,
		EntryDate:   in.EntryDate,
		DueDate:     in.DueDate,
		Note:        in.Note,
	}
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		if err := tx.Create(&order).Error; err != nil {
			return nil, err
		}
		return []store.Event{{Table: "orders", ID: order.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

type FulfillInput struct {
	OrderID       string
	StockID       string
	PackagingType string
	BagsUsed      int
}

// FulfillOrder aparta la cantidad del pedido desde un stock tostado.
// Se surte desde Pendiente o En Producción; la operación misma lleva el
// pedido a Listo para Despacho con avance 100 y recuerda desde qué stock
// se surtió. Un pedido ya surtido, enviado o facturado no se vuelve a
// surtir (el stock ya se descontó).
func FulfillOrder(s *store.Store, in FulfillInput) (*models.Order, error) {
	var out models.Order
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		order, err := findByID[models.Order](tx, in.OrderID)
		if err != nil {
			return nil, err
		}
		if order.Status != models.StatusPendiente && order.Status != models.StatusEnProduccion {
			return nil, fmt.Errorf("%w: no se puede surtir un pedido en estado %q", ErrInvalidTransition, order.Status)
		}
		stock, err := findByID[models.RoastedStock](tx, in.StockID)
		if err != nil {
			return nil, err
		}
		if order.QuantityKg > stock.RemainingQtyKg+Epsilon {
			return nil, fmt.Errorf("%w: el pedido necesita %.3f kg y el stock tiene %.3f kg",
				ErrInsufficientStock, order.QuantityKg, stock.RemainingQtyKg)
		}
		ev, err := deductStock(tx, stock, order.QuantityKg)
		if err != nil {
			return nil, err
		}

		applyStatus(order, models.StatusListoDespacho)
		order.FulfilledFromStockID = &stock.ID
		order.PackagingType = in.PackagingType
		order.BagsUsed = in.BagsUsed
		if err := tx.Save(order).Error; err != nil {
			return nil, err
		}
		out = *order
		return []store.Event{ev, {Table: "orders", ID: order.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type ShipInput struct {
	OrderID      string
	ShippingCost decimal.Decimal // puede ser cero; sin costo no hay despacho
}

// ShipOrder despacha un pedido listo. Si el costo es mayor a cero se crea
// en la misma transacción un gasto pendiente vinculado al pedido; si el
// costo no se entrega, la transición simplemente no ocurre.
func ShipOrder(s *store.Store, in ShipInput) (*models.Order, error) {
	if in.ShippingCost.IsNegative() {
		return nil, fmt.Errorf("%w: el costo de despacho no puede ser negativo", ErrInvalidTransition)
	}
	var out models.Order
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		order, err := findByID[models.Order](tx, in.OrderID)
		if err != nil {
			return nil, err
		}
		if !CanTransition(order.Status, models.StatusEnviado) {
			return nil, fmt.Errorf("%w: no se puede despachar un pedido en estado %q", ErrInvalidTransition, order.Status)
		}
		now := time.Now()
		applyStatus(order, models.StatusEnviado)
		order.ShippedDate = &now
		order.ShippingCost = in.ShippingCost
		if err := tx.Save(order).Error; err != nil {
			return nil, err
		}
		events := []store.Event{{Table: "orders", ID: order.ID}}

		if in.ShippingCost.IsPositive() {
			expense := models.Expense{
				ID:             uuid.NewString(),
				Reason:         fmt.Sprintf("Despacho pedido %s (%s)", order.ID, order.ClientName),
				Amount:         in.ShippingCost,
				Date:           now,
				Status:         models.ExpensePendiente,
				RelatedOrderID: &order.ID,
			}
			if err := tx.Create(&expense).Error; err != nil {
				return nil, err
			}
			events = append(events, store.Event{Table: "expenses", ID: expense.ID})
		}
		out = *order
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// InvoiceOrder factura un pedido ya enviado. Facturado es terminal.
func InvoiceOrder(s *store.Store, orderID string) (*models.Order, error) {
	var out models.Order
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		order, err := findByID[models.Order](tx, orderID)
		if err != nil {
			return nil, err
		}
		if !CanTransition(order.Status, models.StatusFacturado) {
			return nil, fmt.Errorf("%w: solo se factura desde Enviado, el pedido está %q", ErrInvalidTransition, order.Status)
		}
		now := time.Now()
		applyStatus(order, models.StatusFacturado)
		order.InvoicedDate = &now
		if err := tx.Save(order).Error; err != nil {
			return nil, err
		}
		out = *order
		return []store.Event{{Table: "orders", ID: order.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SetOrderStatus aplica una transición manual (incluidas las reversas a
// Pendiente y En Producción). Entrar a Enviado exige el costo de despacho,
// así que solo se permite por ShipOrder.
func SetOrderStatus(s *store.Store, orderID string, to models.OrderStatus) (*models.Order, error) {
	if to == models.StatusEnviado {
		return nil, fmt.Errorf("%w: el despacho requiere costo, use la operación de despacho", ErrInvalidTransition)
	}
	var out models.Order
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		order, err := findByID[models.Order](tx, orderID)
		if err != nil {
			return nil, err
		}
		if !CanTransition(order.Status, to) {
			return nil, fmt.Errorf("%w: de %q a %q", ErrInvalidTransition, order.Status, to)
		}
		applyStatus(order, to)
		if err := tx.Save(order).Error; err != nil {
			return nil, err
		}
		out = *order
		return []store.Event{{Table: "orders", ID: order.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
