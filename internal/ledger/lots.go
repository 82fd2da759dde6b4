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

type IntakeInput struct {
	ClientName string
	Variety    string
	Origin     string
	EntryDate  time.Time
	QuantityKg float64
	PricePerKg decimal.Decimal
	Note       string
}

// IntakeLot registra el ingreso de un lote de café verde. Alta pura:
// la única validación es que el peso no sea negativo.
func IntakeLot(s *store.Store, in IntakeInput) (*models.GreenCoffeeLot, error) {
	if in.QuantityKg < 0 {
		return nil, fmt.Errorf("%w: el peso de ingreso no puede ser negativo", ErrInvalidTransition)
	}
	if in.EntryDate.IsZero() {
		in.EntryDate = time.Now()
	}
	lot := models.GreenCoffeeLot{
		ID:         uuid.NewString(),
		ClientName: in.ClientName,
		Variety:    in.Variety,
		Origin:     in.Origin,
		EntryDate:  in.EntryDate,
		QuantityKg: in.QuantityKg,
		PricePerKg: in.PricePerKg,
		Note:       in.Note,
	}
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		if err := tx.Create(&lot).Error; err != nil {
			return nil, err
		}
		return []store.Event{{Table: "green_coffee_lots", ID: lot.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &lot, nil
}

type RoastInput struct {
	GreenCoffeeID string
	GreenQtyKg    float64
	RoastedQtyKg  float64
	Profile       string
	RoastDate     time.Time
	OrderID       *string
}

// RoastLot consume peso verde de un lote y produce un tueste con su stock.
// Guardas: el peso tostado debe ser estrictamente menor al verde, y el
// verde no puede superar lo que le queda al lote. Si viene un pedido, el
// tueste queda vinculado y el pedido pasa a En Producción (un pedido
// enviado o facturado ya no acepta tuestes); para pedidos de
// servicio la cantidad del pedido se reescribe con el rendimiento real
// acumulado.
func RoastLot(s *store.Store, in RoastInput) (*models.Roast, error) {
	if in.GreenQtyKg <= 0 {
		return nil, fmt.Errorf("%w: el peso verde debe ser mayor a cero", ErrInvalidTransition)
	}
	if in.RoastedQtyKg >= in.GreenQtyKg {
		return nil, fmt.Errorf("%w: el peso tostado (%.3f kg) debe ser menor al verde (%.3f kg)",
			ErrInvalidTransition, in.RoastedQtyKg, in.GreenQtyKg)
	}
	if in.RoastedQtyKg < 0 {
		return nil, fmt.Errorf("%w: el peso tostado no puede ser negativo", ErrInvalidTransition)
	}
	if in.RoastDate.IsZero() {
		in.RoastDate = time.Now()
	}

	var roast models.Roast
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		lot, err := findByID[models.GreenCoffeeLot](tx, in.GreenCoffeeID)
		if err != nil {
			return nil, err
		}
		if in.GreenQtyKg > lot.QuantityKg+Epsilon {
			return nil, fmt.Errorf("%w: el lote tiene %.3f kg y se pidieron %.3f kg",
				ErrInsufficientStock, lot.QuantityKg, in.GreenQtyKg)
		}

		lot.QuantityKg -= in.GreenQtyKg
		if lot.QuantityKg < Epsilon {
			lot.QuantityKg = 0 // el lote se drena, nunca se borra
		}
		if err := tx.Save(lot).Error; err != nil {
			return nil, err
		}

		roast = models.Roast{
			ID:            uuid.NewString(),
			ClientName:    lot.ClientName,
			GreenCoffeeID: lot.ID,
			GreenQtyKg:    in.GreenQtyKg,
			RoastedQtyKg:  in.RoastedQtyKg,
			WeightLossPct: (in.GreenQtyKg - in.RoastedQtyKg) / in.GreenQtyKg * 100,
			Profile:       in.Profile,
			RoastDate:     in.RoastDate,
			OrderID:       in.OrderID,
		}
		if err := tx.Create(&roast).Error; err != nil {
			return nil, err
		}

		stock := models.RoastedStock{
			ID:             uuid.NewString(),
			RoastID:        roast.ID,
			Variety:        lot.Variety,
			ClientName:     lot.ClientName,
			TotalQtyKg:     in.RoastedQtyKg,
			RemainingQtyKg: in.RoastedQtyKg,
		}
		if err := tx.Create(&stock).Error; err != nil {
			return nil, err
		}

		events := []store.Event{
			{Table: "green_coffee_lots", ID: lot.ID},
			{Table: "roasts", ID: roast.ID},
			{Table: "roasted_stocks", ID: stock.ID},
		}

		if in.OrderID != nil {
			order, err := findByID[models.Order](tx, *in.OrderID)
			if err != nil {
				return nil, err
			}
			if order.Status != models.StatusEnProduccion && !CanTransition(order.Status, models.StatusEnProduccion) {
				return nil, fmt.Errorf("%w: no se puede tostar contra un pedido en estado %q", ErrInvalidTransition, order.Status)
			}
			order.RelatedRoastIDs = append(order.RelatedRoastIDs, roast.ID)
			applyStatus(order, models.StatusEnProduccion)
			if order.Type == models.OrderServicio {
				// el entregable de un servicio se define por resultado:
				// rendimiento tostado acumulado de todos sus tuestes
				var prev float64
				if len(order.RelatedRoastIDs) > 1 {
					err := tx.Model(&models.Roast{}).
						Where("id IN ?", []string(order.RelatedRoastIDs[:len(order.RelatedRoastIDs)-1])).
						Select("COALESCE(SUM(roasted_qty_kg), 0)").Scan(&prev).Error
					if err != nil {
						return nil, err
					}
				}
				order.QuantityKg = prev + in.RoastedQtyKg
			}
			if err := tx.Save(order).Error; err != nil {
				return nil, err
			}
			events = append(events, store.Event{Table: "orders", ID: order.ID})
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return &roast, nil
}
