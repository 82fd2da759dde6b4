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

type ExpenseInput struct {
	Reason         string
	Amount         decimal.Decimal
	Date           time.Time
	DocumentType   string
	DocumentID     string
	RelatedOrderID *string
}

// CreateExpense registra un gasto manual, pendiente de pago.
func CreateExpense(s *store.Store, in ExpenseInput) (*models.Expense, error) {
	if in.Reason == "" {
		return nil, fmt.Errorf("%w: el gasto necesita un motivo", ErrInvalidTransition)
	}
	if in.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: el monto no puede ser negativo", ErrInvalidTransition)
	}
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	expense := models.Expense{
		ID:             uuid.NewString(),
		Reason:         in.Reason,
		Amount:         in.Amount,
		Date:           in.Date,
		DocumentType:   in.DocumentType,
		DocumentID:     in.DocumentID,
		Status:         models.ExpensePendiente,
		RelatedOrderID: in.RelatedOrderID,
	}
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		if in.RelatedOrderID != nil {
			if _, err := findByID[models.Order](tx, *in.RelatedOrderID); err != nil {
				return nil, err
			}
		}
		if err := tx.Create(&expense).Error; err != nil {
			return nil, err
		}
		return []store.Event{{Table: "expenses", ID: expense.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// MarkExpensePaid pasa un gasto de pendiente a pagado.
func MarkExpensePaid(s *store.Store, expenseID string) (*models.Expense, error) {
	var out models.Expense
	err := s.Commit(func(tx *gorm.DB) ([]store.Event, error) {
		expense, err := findByID[models.Expense](tx, expenseID)
		if err != nil {
			return nil, err
		}
		if expense.Status == models.ExpensePagado {
			return nil, fmt.Errorf("%w: el gasto ya está pagado", ErrInvalidTransition)
		}
		expense.Status = models.ExpensePagado
		if err := tx.Save(expense).Error; err != nil {
			return nil, err
		}
		out = *expense
		return []store.Event{{Table: "expenses", ID: expense.ID}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
