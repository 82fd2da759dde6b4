package inventory

import (
	"time"

	"tostaduria-backend/internal/ledger"
	"tostaduria-backend/internal/models"
	"tostaduria-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateLotRequest struct {
	ClientName string          `json:"client_name"`
	Variety    string          `json:"variety"`
	Origin     string          `json:"origin"`
	EntryDate  string          `json:"entry_date"` // "2025-12-09"
	QuantityKg float64         `json:"quantity_kg"`
	PricePerKg decimal.Decimal `json:"price_per_kg"`
	Note       string          `json:"note"`
}

// POST /api/lots
func CreateLotHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLotRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.ClientName == "" || body.Variety == "" {
			return fiber.NewError(fiber.StatusBadRequest, "client_name y variety son obligatorios")
		}
		entry, err := parseDate(body.EntryDate)
		if err != nil {
			return err
		}
		lot, err := ledger.IntakeLot(s, ledger.IntakeInput{
			ClientName: body.ClientName,
			Variety:    body.Variety,
			Origin:     body.Origin,
			EntryDate:  entry,
			QuantityKg: body.QuantityKg,
			PricePerKg: body.PricePerKg,
			Note:       body.Note,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(lot)
	}
}

// GET /api/lots
func ListLotsHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var lots []models.GreenCoffeeLot
		if err := s.DB().Order("entry_date DESC").Find(&lots).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los lotes")
		}
		return c.JSON(lots)
	}
}

type CreateRoastRequest struct {
	GreenCoffeeID string  `json:"green_coffee_id"`
	GreenQtyKg    float64 `json:"green_qty_kg"`
	RoastedQtyKg  float64 `json:"roasted_qty_kg"`
	Profile       string  `json:"profile"`
	RoastDate     string  `json:"roast_date"`
	OrderID       *string `json:"order_id"` // opcional: vincula el tueste a un pedido
}

// POST /api/roasts
func CreateRoastHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateRoastRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if body.GreenCoffeeID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "green_coffee_id es obligatorio")
		}
		roastDate, err := parseDate(body.RoastDate)
		if err != nil {
			return err
		}
		roast, err := ledger.RoastLot(s, ledger.RoastInput{
			GreenCoffeeID: body.GreenCoffeeID,
			GreenQtyKg:    body.GreenQtyKg,
			RoastedQtyKg:  body.RoastedQtyKg,
			Profile:       body.Profile,
			RoastDate:     roastDate,
			OrderID:       body.OrderID,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(roast)
	}
}

// GET /api/roasts
func ListRoastsHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var roasts []models.Roast
		if err := s.DB().Order("roast_date DESC").Find(&roasts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los tuestes")
		}
		return c.JSON(roasts)
	}
}

// GET /api/roasted-stocks
func ListStocksHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var stocks []models.RoastedStock
		if err := s.DB().Order("created_at DESC").Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo listar el stock tostado")
		}
		return c.JSON(stocks)
	}
}

type SelectStockRequest struct {
	MermaGrams float64 `json:"merma_grams"`
}

// POST /api/roasted-stocks/:id/select
func SelectStockHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SelectStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		stock, err := ledger.SelectStock(s, ledger.SelectInput{
			StockID:    c.Params("id"),
			MermaGrams: body.MermaGrams,
		})
		if err != nil {
			return err
		}
		return c.JSON(stock)
	}
}

type PackageBagsRequest struct {
	Format models.BagFormat `json:"format"` // 250g | 500g | 1kg
	Count  int              `json:"count"`
}

// POST /api/roasted-stocks/:id/package
func PackageBagsHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body PackageBagsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		bag, err := ledger.PackageBags(s, ledger.PackageInput{
			StockID: c.Params("id"),
			Format:  body.Format,
			Count:   body.Count,
		})
		if err != nil {
			return err
		}
		return c.JSON(bag)
	}
}

// GET /api/retail-bags
func ListRetailBagsHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var bags []models.RetailBagStock
		if err := s.DB().Order("coffee_name ASC").Find(&bags).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo listar el stock envasado")
		}
		return c.JSON(bags)
	}
}

type RetailSaleRequest struct {
	Count int `json:"count"`
}

// POST /api/retail-bags/:id/sell
func SellRetailBagsHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RetailSaleRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		bag, err := ledger.SellRetailBags(s, ledger.RetailSaleInput{
			BagStockID: c.Params("id"),
			Count:      body.Count,
		})
		if err != nil {
			return err
		}
		return c.JSON(bag)
	}
}

// parseDate acepta vacío (hoy) o "YYYY-MM-DD".
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
