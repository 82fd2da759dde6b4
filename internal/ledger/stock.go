package ledger

import (
	"fmt"

	"tostaduria-backend/internal/models"
	"tostaduria-backend/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// deductStock descuenta kilos de un stock tostado dentro de la transacción.
// Si el saldo queda bajo el épsilon, el registro se elimina físicamente
// (lote agotado). Devuelve el evento correspondiente.
func deductStock(tx *gorm.DB, stock *models.RoastedStock, kg float64) (store.Event, error) {
	stock.RemainingQtyKg -= kg
	if stock.RemainingQtyKg < Epsilon {
		stock.RemainingQtyKg = 0
		if err := tx.Delete(&models.RoastedStock{}, "id = ?", stock.ID).Error; err != nil {
			return store.Event{}, err
		}
		return store.Event{Table: "roasted_stocks", ID: stock.ID, Deleted: true}, nil
	}
	if err := tx.Save(stock).Error; err != nil {
		return store.Event{}, err
	}
	return store.Event{Table: "roasted_stocks", ID: stock.ID}, nil
}

type SelectInput struct {
	StockID    string
	MermaGrams float64
}

// SelectStock registra la selección/escogido de un stock: la merma en
// gramos se convierte en descuento de peso y el stock queda marcado como
// seleccionado.
func SelectStock(s *store.Store, in SelectInput) (*models.RoastedStock, error) {
	if in.MermaGrams < 0 {
		return nil, fmt.Errorf("%w: la merma no puede ser negativa", ErrInvalidTransition)
	}
	reductionKg := in.MermaGrams / 1000

	var out models.RoastedStock
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		stock, err := findByID[models.RoastedStock](tx, in.StockID)
		if err != nil {
			return nil, err
		}
		if reductionKg > stock.RemainingQtyKg+Epsilon {
			return nil, fmt.Errorf("%w: quedan %.3f kg y la merma descuenta %.3f kg",
				ErrInsufficientStock, stock.RemainingQtyKg, reductionKg)
		}
		stock.IsSelected = true
		stock.MermaGrams += in.MermaGrams
		ev, err := deductStock(tx, stock, reductionKg)
		if err != nil {
			return nil, err
		}
		out = *stock
		return []store.Event{ev}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type PackageInput struct {
	StockID string
	Format  models.BagFormat
	Count   int
}

// PackageBags convierte stock a granel en bolsas de venta al detalle.
// El stock de bolsas se acumula por (variedad, formato); el vínculo con el
// granel de origen es solo por nombre de variedad. Los insumos con el
// formato correspondiente se descuentan de forma informativa, truncados en
// cero: la falta de insumo registrado nunca bloquea el envasado.
func PackageBags(s *store.Store, in PackageInput) (*models.RetailBagStock, error) {
	formatKg := in.Format.WeightKg()
	if formatKg == 0 {
		return nil, fmt.Errorf("%w: formato de bolsa desconocido %q", ErrInvalidTransition, in.Format)
	}
	if in.Count <= 0 {
		return nil, fmt.Errorf("%w: la cantidad de bolsas debe ser mayor a cero", ErrInvalidTransition)
	}
	reductionKg := float64(in.Count) * formatKg

	var out models.RetailBagStock
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		stock, err := findByID[models.RoastedStock](tx, in.StockID)
		if err != nil {
			return nil, err
		}
		if reductionKg > stock.RemainingQtyKg+Epsilon {
			return nil, fmt.Errorf("%w: quedan %.3f kg y el envasado necesita %.3f kg",
				ErrInsufficientStock, stock.RemainingQtyKg, reductionKg)
		}
		ev, err := deductStock(tx, stock, reductionKg)
		if err != nil {
			return nil, err
		}
		events := []store.Event{ev}

		var bag models.RetailBagStock
		err = tx.First(&bag, "coffee_name = ? AND type = ?", stock.Variety, in.Format).Error
		switch {
		case err == gorm.ErrRecordNotFound:
			bag = models.RetailBagStock{
				ID:         uuid.NewString(),
				CoffeeName: stock.Variety,
				Type:       in.Format,
				Quantity:   in.Count,
			}
			if err := tx.Create(&bag).Error; err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			bag.Quantity += in.Count
			if err := tx.Save(&bag).Error; err != nil {
				return nil, err
			}
		}
		events = append(events, store.Event{Table: "retail_bag_stocks", ID: bag.ID})

		// consumo de insumos de envasado, mejor esfuerzo
		var items []models.ProductionItem
		if err := tx.Find(&items, "format = ?", in.Format).Error; err != nil {
			return nil, err
		}
		for i := range items {
			items[i].Quantity -= float64(in.Count)
			if items[i].Quantity < 0 {
				items[i].Quantity = 0
			}
			if err := tx.Save(&items[i]).Error; err != nil {
				return nil, err
			}
			events = append(events, store.Event{Table: "production_items", ID: items[i].ID})
		}

		out = bag
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

type RetailSaleInput struct {
	BagStockID string
	Count      int
}

// SellRetailBags descuenta unidades envasadas por venta directa,
// truncado en cero.
func SellRetailBags(s *store.Store, in RetailSaleInput) (*models.RetailBagStock, error) {
	if in.Count <= 0 {
		return nil, fmt.Errorf("%w: la cantidad vendida debe ser mayor a cero", ErrInvalidTransition)
	}
	var out models.RetailBagStock
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		bag, err := findByID[models.RetailBagStock](tx, in.BagStockID)
		if err != nil {
			return nil, err
		}
		bag.Quantity -= in.Count
		if bag.Quantity < 0 {
			bag.Quantity = 0
		}
		if err := tx.Save(bag).Error; err != nil {
			return nil, err
		}
		out = *bag
		return []store.Event{{Table: "retail_bag_stocks", ID: bag.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
