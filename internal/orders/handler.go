package orders

import (
	"time"

	"tostaduria-backend/internal/ledger"
	"tostaduria-backend/internal/models"
	"tostaduria-backend/internal/store"
	"tostaduria-backend/internal/trace"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateOrderRequest struct {
	ClientName  string  `json:"client_name"`
	ClientPhone string  `json:"client_phone"`
	Variety     string  `json:"variety"`
	Type        string  `json:"type"` // venta | servicio
	QuantityKg  float64 `json:"quantity_kg"`
	EntryDate   string  `json:"entry_date"`
	DueDate     *string `json:"due_date"`
	Note        string  `json:"note"`
}

// POST /api/orders
func CreateOrderHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.ClientName == "" {
			return fiber.NewError(fiber.StatusBadRequest, "client_name es obligatorio")
		}
		entry, err := parseDate(body.EntryDate)
		if err != nil {
			return err
		}
		var due *time.Time
		if body.DueDate != nil && *body.DueDate != "" {
			d, err := parseDate(*body.DueDate)
			if err != nil {
				return err
			}
			due = &d
		}
		order, err := ledger.CreateOrder(s, ledger.OrderInput{
			ClientName:  body.ClientName,
			ClientPhone: body.ClientPhone,
			Variety:     body.Variety,
			Type:        models.OrderType(body.Type),
			QuantityKg:  body.QuantityKg,
			EntryDate:   entry,
			DueDate:     due,
			Note:        body.Note,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(order)
	}
}

// GET /api/orders
func ListOrdersHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var orders []models.Order
		q := s.DB().Order("entry_date DESC")
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if err := q.Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los pedidos")
		}
		return c.JSON(orders)
	}
}

type FulfillOrderRequest struct {
	StockID       string `json:"stock_id"`
	PackagingType string `json:"packaging_type"`
	BagsUsed      int    `json:"bags_used"`
}

// POST /api/orders/:id/fulfill
func FulfillOrderHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body FulfillOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.StockID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "stock_id es obligatorio")
		}
		order, err := ledger.FulfillOrder(s, ledger.FulfillInput{
			OrderID:       c.Params("id"),
			StockID:       body.StockID,
			PackagingType: body.PackagingType,
			BagsUsed:      body.BagsUsed,
		})
		if err != nil {
			return err
		}
		return c.JSON(order)
	}
}

type ShipOrderRequest struct {
	ShippingCost *decimal.Decimal `json:"shipping_cost"` // obligatorio, puede ser 0
}

// POST /api/orders/:id/ship — el costo es la entrada obligatoria de la
// transición: sin costo en el cuerpo no hay despacho.
func ShipOrderHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ShipOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.ShippingCost == nil {
			return fiber.NewError(fiber.StatusBadRequest, "shipping_cost es obligatorio (puede ser 0)")
		}
		order, err := ledger.ShipOrder(s, ledger.ShipInput{
			OrderID:      c.Params("id"),
			ShippingCost: *body.ShippingCost,
		})
		if err != nil {
			return err
		}
		return c.JSON(order)
	}
}

// POST /api/orders/:id/invoice
func InvoiceOrderHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		order, err := ledger.InvoiceOrder(s, c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(order)
	}
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

// PUT /api/orders/:id/status — transición manual, incluidas las reversas.
func SetOrderStatusHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SetStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		order, err := ledger.SetOrderStatus(s, c.Params("id"), models.OrderStatus(body.Status))
		if err != nil {
			return err
		}
		return c.JSON(order)
	}
}

// GET /api/orders/:id/trace — informe de trazabilidad para el cliente.
func TraceOrderHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := trace.Resolve(s, c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(report)
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "El formato de fecha debe ser 'YYYY-MM-DD'")
	}
	return d, nil
}
