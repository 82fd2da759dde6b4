package ledger

import (
	"fmt"

	"tostaduria-backend/internal/models"
	"tostaduria-backend/internal/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductionItemInput struct {
	Name         string
	Type         models.ProductionItemType
	Quantity     float64
	MinThreshold float64
	Format       *models.BagFormat
}

// CreateProductionItem da de alta un insumo de producción.
func CreateProductionItem(s *store.Store, in ProductionItemInput) (*models.ProductionItem, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: el insumo necesita un nombre", ErrInvalidTransition)
	}
	if in.Type != models.ItemUnidad && in.Type != models.ItemPorcentaje {
		return nil, fmt.Errorf("%w: tipo de insumo desconocido %q", ErrInvalidTransition, in.Type)
	}
	if in.Quantity < 0 || in.MinThreshold < 0 {
		return nil, fmt.Errorf("%w: cantidades de insumo negativas", ErrInvalidTransition)
	}
	if in.Format != nil && in.Format.WeightKg() == 0 {
		return nil, fmt.Errorf("%w: formato de bolsa desconocido %q", ErrInvalidTransition, *in.Format)
	}
	item := models.ProductionItem{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Type:         in.Type,
		Quantity:     in.Quantity,
		MinThreshold: in.MinThreshold,
		Format:       in.Format,
	}
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		if err := tx.Create(&item).Error; err != nil {
			return nil, err
		}
		return []store.Event{{Table: "production_items", ID: item.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// RestockProductionItem repone un insumo: los de tipo unidad suman la
// cantidad recibida, los de porcentaje se recargan a 100.
func RestockProductionItem(s *store.Store, itemID string, qty float64) (*models.ProductionItem, error) {
	if qty < 0 {
		return nil, fmt.Errorf("%w: la reposición no puede ser negativa", ErrInvalidTransition)
	}
	var out models.ProductionItem
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		item, err := findByID[models.ProductionItem](tx, itemID)
		if err != nil {
			return nil, err
		}
		if item.Type == models.ItemPorcentaje {
			item.Quantity = 100
		} else {
			item.Quantity += qty
		}
		if err := tx.Save(item).Error; err != nil {
			return nil, err
		}
		out = *item
		return []store.Event{{Table: "production_items", ID: item.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ConsumeProductionItem descuenta consumo manual de un insumo, truncado
// en cero (el consumo de insumos es informativo, no una restricción dura).
func ConsumeProductionItem(s *store.Store, itemID string, qty float64) (*models.ProductionItem, error) {
	if qty < 0 {
		return nil, fmt.Errorf("%w: el consumo no puede ser negativo", ErrInvalidTransition)
	}
	var out models.ProductionItem
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		item, err := findByID[models.ProductionItem](tx, itemID)
		if err != nil {
			return nil, err
		}
		item.Quantity -= qty
		if item.Quantity < 0 {
			item.Quantity = 0
		}
		if err := tx.Save(item).Error; err != nil {
			return nil, err
		}
		out = *item
		return []store.Event{{Table: "production_items", ID: item.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
