package production

import (
	"tostaduria-backend/internal/ledger"
	"tostaduria-backend/internal/models"
	"tostaduria-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

type CreateItemRequest struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"` // unidad | porcentaje
	Quantity     float64 `json:"quantity"`
	MinThreshold float64 `json:"min_threshold"`
	Format       *string `json:"format"` // 250g | 500g | 1kg, opcional
}

// POST /api/production-items
func CreateItemHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		var format *models.BagFormat
		if body.Format != nil && *body.Format != "" {
			f := models.BagFormat(*body.Format)
			format = &f
		}
		item, err := ledger.CreateProductionItem(s, ledger.ProductionItemInput{
			Name:         body.Name,
			Type:         models.ProductionItemType(body.Type),
			Quantity:     body.Quantity,
			MinThreshold: body.MinThreshold,
			Format:       format,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

type ItemResponse struct {
	models.ProductionItem
	LowStock bool `json:"low_stock"`
}

// GET /api/production-items
func ListItemsHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []models.ProductionItem
		if err := s.DB().Order("name ASC").Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los insumos")
		}
		out := make([]ItemResponse, len(items))
		for i, item := range items {
			out[i] = ItemResponse{ProductionItem: item, LowStock: item.LowStock()}
		}
		return c.JSON(out)
	}
}

type QuantityRequest struct {
	Quantity float64 `json:"quantity"`
}

// POST /api/production-items/:id/restock
func RestockItemHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body QuantityRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		item, err := ledger.RestockProductionItem(s, c.Params("id"), body.Quantity)
		if err != nil {
			return err
		}
		return c.JSON(item)
	}
}

// POST /api/production-items/:id/consume
func ConsumeItemHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body QuantityRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		item, err := ledger.ConsumeProductionItem(s, c.Params("id"), body.Quantity)
		if err != nil {
			return err
		}
		return c.JSON(item)
	}
}
