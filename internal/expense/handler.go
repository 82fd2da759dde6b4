package expense

import (
	"time"

	"tostaduria-backend/internal/ledger"
	"tostaduria-backend/internal/models"
	"tostaduria-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateExpenseRequest struct {
	Reason         string          `json:"reason"`
	Amount         decimal.Decimal `json:"amount"`
	Date           string          `json:"date"` // "2025-12-09"
	DocumentType   string          `json:"document_type"`
	DocumentID     string          `json:"document_id"`
	RelatedOrderID *string         `json:"related_order_id"`
}

// POST /api/expenses
func CreateExpenseHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		var date time.Time
		if body.Date != "" {
			d, err := time.Parse("2006-01-02", body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "El formato de fecha debe ser 'YYYY-MM-DD'")
			}
			date = d
		}
		expense, err := ledger.CreateExpense(s, ledger.ExpenseInput{
			Reason:         body.Reason,
			Amount:         body.Amount,
			Date:           date,
			DocumentType:   body.DocumentType,
			DocumentID:     body.DocumentID,
			RelatedOrderID: body.RelatedOrderID,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(expense)
	}
}

// GET /api/expenses
func ListExpensesHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var expenses []models.Expense
		q := s.DB().Order("date DESC")
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		if err := q.Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los gastos")
		}
		return c.JSON(expenses)
	}
}

// POST /api/expenses/:id/pay
func PayExpenseHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		expense, err := ledger.MarkExpensePaid(s, c.Params("id"))
		if err != nil {
			return err
		}
		return c.JSON(expense)
	}
}
