// Package trace reconstruye la cadena de trazabilidad de un pedido:
// pedido → tuestes → lotes verdes. Solo lectura, nunca muta el almacén.
package trace

import (
	"errors"
	"fmt"
	"time"

	"tostaduria-backend/internal/ledger"
	"tostaduria-backend/internal/models"
	"tostaduria-backend/internal/store"

	"gorm.io/gorm"
)

// RoastTrace es una fila del informe: un tueste con su lote de origen.
type RoastTrace struct {
	RoastID       string    `json:"roast_id"`
	LotID         string    `json:"lot_id"`
	LotOrigin     string    `json:"lot_origin"`
	Variety       string    `json:"variety"`
	Profile       string    `json:"profile"`
	RoastDate     time.Time `json:"roast_date"`
	GreenQtyKg    float64   `json:"green_qty_kg"`
	RoastedQtyKg  float64   `json:"roasted_qty_kg"`
	WeightLossPct float64   `json:"weight_loss_percentage"`
}

// Report agrega la producción que respalda un pedido.
type Report struct {
	OrderID          string       `json:"order_id"`
	ClientName       string       `json:"client_name"`
	Roasts           []RoastTrace `json:"roasts"`
	TotalGreenUsedKg float64      `json:"total_green_used_kg"`
	TotalRoastedKg   float64      `json:"total_roasted_kg"`
	AvgWeightLossPct float64      `json:"avg_weight_loss_percentage"`
}

// Resolve arma el informe de un pedido. Si el pedido tiene tuestes
// vinculados directamente se usan esos; si no, se cae al único tueste
// alcanzable vía el stock desde el que se surtió (el vínculo directo solo
// se puebla cuando el tueste ocurrió a través del flujo del pedido).
func Resolve(s *store.Store, orderID string) (*Report, error) {
	var order models.Order
	if err := s.DB().First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ledger.ErrNotFound, orderID)
		}
		return nil, err
	}

	var roasts []models.Roast
	switch {
	case len(order.RelatedRoastIDs) > 0:
		if err := s.DB().Find(&roasts, "id IN ?", []string(order.RelatedRoastIDs)).Error; err != nil {
			return nil, err
		}
	case order.FulfilledFromStockID != nil:
		// el stock puede ya estar borrado por agotamiento; en ese caso el
		// pedido queda sin cadena resoluble
		var stock models.RoastedStock
		err := s.DB().First(&stock, "id = ?", *order.FulfilledFromStockID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil {
			var roast models.Roast
			if err := s.DB().First(&roast, "id = ?", stock.RoastID).Error; err == nil {
				roasts = append(roasts, roast)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
		}
	}

	report := &Report{OrderID: order.ID, ClientName: order.ClientName}
	for _, r := range roasts {
		row := RoastTrace{
			RoastID:       r.ID,
			LotID:         r.GreenCoffeeID,
			GreenQtyKg:    r.GreenQtyKg,
			RoastedQtyKg:  r.RoastedQtyKg,
			WeightLossPct: r.WeightLossPct,
			Profile:       r.Profile,
			RoastDate:     r.RoastDate,
		}
		var lot models.GreenCoffeeLot
		if err := s.DB().First(&lot, "id = ?", r.GreenCoffeeID).Error; err == nil {
			row.LotOrigin = lot.Origin
			row.Variety = lot.Variety
		}
		report.Roasts = append(report.Roasts, row)
		report.TotalGreenUsedKg += r.GreenQtyKg
		report.TotalRoastedKg += r.RoastedQtyKg
		report.AvgWeightLossPct += r.WeightLossPct
	}
	if len(report.Roasts) > 0 {
		report.AvgWeightLossPct /= float64(len(report.Roasts))
	}
	return report, nil
}
