package store

import "tostaduria-backend/internal/models"

// Collection describe una colección sincronizable/respaldable: su tabla y
// cómo fabricar un registro o un slice vacíos para deserializar en ellos.
type Collection struct {
	Table   string
	Model   func() any // puntero a registro vacío
	Slice   func() any // puntero a slice vacío
	Records func(slicePtr any) []models.Record
}

func recordSlice[T models.Record](p any) []models.Record {
	rows := *p.(*[]T)
	out := make([]models.Record, len(rows))
	for i := range rows {
		out[i] = rows[i]
	}
	return out
}

// Collections enumera todas las colecciones del libro, en el orden en que
// se exportan y se restauran. Settings queda fuera: es estado local del
// dispositivo (perfil de conexión) y no debe viajar entre equipos.
var Collections = []Collection{
	{
		Table:   "green_coffee_lots",
		Model:   func() any { return &models.GreenCoffeeLot{} },
		Slice:   func() any { return &[]models.GreenCoffeeLot{} },
		Records: recordSlice[models.GreenCoffeeLot],
	},
	{
		Table:   "roasts",
		Model:   func() any { return &models.Roast{} },
		Slice:   func() any { return &[]models.Roast{} },
		Records: recordSlice[models.Roast],
	},
	{
		Table:   "roasted_stocks",
		Model:   func() any { return &models.RoastedStock{} },
		Slice:   func() any { return &[]models.RoastedStock{} },
		Records: recordSlice[models.RoastedStock],
	},
	{
		Table:   "retail_bag_stocks",
		Model:   func() any { return &models.RetailBagStock{} },
		Slice:   func() any { return &[]models.RetailBagStock{} },
		Records: recordSlice[models.RetailBagStock],
	},
	{
		Table:   "orders",
		Model:   func() any { return &models.Order{} },
		Slice:   func() any { return &[]models.Order{} },
		Records: recordSlice[models.Order],
	},
	{
		Table:   "expenses",
		Model:   func() any { return &models.Expense{} },
		Slice:   func() any { return &[]models.Expense{} },
		Records: recordSlice[models.Expense],
	},
	{
		Table:   "production_items",
		Model:   func() any { return &models.ProductionItem{} },
		Slice:   func() any { return &[]models.ProductionItem{} },
		Records: recordSlice[models.ProductionItem],
	},
}

// CollectionByTable busca una colección por nombre de tabla.
func CollectionByTable(table string) (Collection, bool) {
	for _, c := range Collections {
		if c.Table == table {
			return c, true
		}
	}
	return Collection{}, false
}
