package ledger

import (
	"errors"
	"math"
	"testing"

	"tostaduria-backend/internal/models"
	"tostaduria-backend/internal/store"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("abriendo almacén en memoria: %v", err)
	}
	return s
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func intakeLot(t *testing.T, s *store.Store, kg float64) *models.GreenCoffeeLot {
	t.Helper()
	lot, err := IntakeLot(s, IntakeInput{ClientName: "Café Andes", Variety: "Caturra", Origin: "Curicó", QuantityKg: kg})
	if err != nil {
		t.Fatalf("IntakeLot: %v", err)
	}
	return lot
}

func roastStock(t *testing.T, s *store.Store, roastID string) *models.RoastedStock {
	t.Helper()
	var stock models.RoastedStock
	if err := s.DB().First(&stock, "roast_id = ?", roastID).Error; err != nil {
		t.Fatalf("buscando stock del tueste: %v", err)
	}
	return &stock
}

func TestRoastLotScenario(t *testing.T) {
	s := newStore(t)
	lot := intakeLot(t, s, 100)

	// Escenario A: 60 kg verdes rinden 48 kg tostados, merma 20%
	roast, err := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 60, RoastedQtyKg: 48, Profile: "medio"})
	if err != nil {
		t.Fatalf("RoastLot: %v", err)
	}
	if !approx(roast.WeightLossPct, 20) {
		t.Errorf("merma de peso = %v, se esperaba 20", roast.WeightLossPct)
	}

	var got models.GreenCoffeeLot
	if err := s.DB().First(&got, "id = ?", lot.ID).Error; err != nil {
		t.Fatalf("releyendo lote: %v", err)
	}
	if !approx(got.QuantityKg, 40) {
		t.Errorf("al lote le quedan %v kg, se esperaban 40", got.QuantityKg)
	}

	stock := roastStock(t, s, roast.ID)
	if !approx(stock.TotalQtyKg, 48) || !approx(stock.RemainingQtyKg, 48) {
		t.Errorf("stock total/restante = %v/%v, se esperaba 48/48", stock.TotalQtyKg, stock.RemainingQtyKg)
	}
}

func TestRoastLotGuards(t *testing.T) {
	s := newStore(t)
	lot := intakeLot(t, s, 50)

	// tostado >= verde: nunca puede existir un tueste así
	if _, err := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 20, RoastedQtyKg: 20}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("tostado == verde: err = %v, se esperaba ErrInvalidTransition", err)
	}
	// verde > saldo del lote
	if _, err := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 60, RoastedQtyKg: 40}); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("verde > lote: err = %v, se esperaba ErrInsufficientStock", err)
	}
	// lote inexistente
	if _, err := RoastLot(s, RoastInput{GreenCoffeeID: "no-existe", GreenQtyKg: 10, RoastedQtyKg: 8}); !errors.Is(err, ErrNotFound) {
		t.Errorf("lote inexistente: err = %v, se esperaba ErrNotFound", err)
	}

	// la guarda que falla no deja mutación a medias
	var got models.GreenCoffeeLot
	if err := s.DB().First(&got, "id = ?", lot.ID).Error; err != nil {
		t.Fatalf("releyendo lote: %v", err)
	}
	if !approx(got.QuantityKg, 50) {
		t.Errorf("el lote quedó en %v kg tras operaciones rechazadas, se esperaban 50", got.QuantityKg)
	}
}

func TestRoastLotAttachesToOrder(t *testing.T) {
	s := newStore(t)
	lot := intakeLot(t, s, 100)
	order, err := CreateOrder(s, OrderInput{ClientName: "Café Andes", Type: models.OrderServicio, QuantityKg: 55})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if _, err := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 30, RoastedQtyKg: 24, OrderID: &order.ID}); err != nil {
		t.Fatalf("primer tueste: %v", err)
	}
	if _, err := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 30, RoastedQtyKg: 25, OrderID: &order.ID}); err != nil {
		t.Fatalf("segundo tueste: %v", err)
	}

	var got models.Order
	if err := s.DB().First(&got, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("releyendo pedido: %v", err)
	}
	if got.Status != models.StatusEnProduccion {
		t.Errorf("estado = %q, se esperaba En Producción", got.Status)
	}
	if len(got.RelatedRoastIDs) != 2 {
		t.Errorf("tuestes vinculados = %d, se esperaban 2", len(got.RelatedRoastIDs))
	}
	// servicio: la cantidad se reescribe con el rendimiento acumulado real
	if !approx(got.QuantityKg, 49) {
		t.Errorf("cantidad del servicio = %v, se esperaba 49", got.QuantityKg)
	}
}

func TestSelectStockScenario(t *testing.T) {
	s := newStore(t)
	lot := intakeLot(t, s, 100)
	roast, _ := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 60, RoastedQtyKg: 48})
	stock := roastStock(t, s, roast.ID)

	// Escenario B: merma de selección de 200 g
	got, err := SelectStock(s, SelectInput{StockID: stock.ID, MermaGrams: 200})
	if err != nil {
		t.Fatalf("SelectStock: %v", err)
	}
	if !got.IsSelected {
		t.Error("el stock no quedó marcado como seleccionado")
	}
	if !approx(got.MermaGrams, 200) || !approx(got.RemainingQtyKg, 47.8) {
		t.Errorf("merma/restante = %v/%v, se esperaba 200/47.8", got.MermaGrams, got.RemainingQtyKg)
	}

	// merma mayor al saldo: rechazada
	if _, err := SelectStock(s, SelectInput{StockID: stock.ID, MermaGrams: 50000}); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("merma > saldo: err = %v, se esperaba ErrInsufficientStock", err)
	}
}

func TestSelectStockDeletesOnExhaustion(t *testing.T) {
	s := newStore(t)
	lot := intakeLot(t, s, 10)
	roast, _ := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 5, RoastedQtyKg: 4})
	stock := roastStock(t, s, roast.ID)

	if _, err := SelectStock(s, SelectInput{StockID: stock.ID, MermaGrams: 4000}); err != nil {
		t.Fatalf("SelectStock: %v", err)
	}
	var gone models.RoastedStock
	err := s.DB().First(&gone, "id = ?", stock.ID).Error
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("el stock agotado sigue existiendo (err = %v)", err)
	}
}

func TestFulfillOrderScenarios(t *testing.T) {
	s := newStore(t)
	lot := intakeLot(t, s, 100)
	roast, _ := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 60, RoastedQtyKg: 48})
	stock := roastStock(t, s, roast.ID)
	if _, err := SelectStock(s, SelectInput{StockID: stock.ID, MermaGrams: 200}); err != nil {
		t.Fatalf("SelectStock: %v", err)
	}

	// Escenario C: 47.9 kg contra 47.8 kg disponibles → rechazado
	orderC, _ := CreateOrder(s, OrderInput{ClientName: "Emporio Sur", Type: models.OrderVenta, QuantityKg: 47.9})
	if _, err := FulfillOrder(s, FulfillInput{OrderID: orderC.ID, StockID: stock.ID}); !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("47.9 > 47.8: err = %v, se esperaba ErrInsufficientStock", err)
	}

	// Escenario D: 47.8 kg exactos → stock agotado y borrado, pedido listo
	orderD, _ := CreateOrder(s, OrderInput{ClientName: "Emporio Sur", Type: models.OrderVenta, QuantityKg: 47.8})
	got, err := FulfillOrder(s, FulfillInput{OrderID: orderD.ID, StockID: stock.ID, PackagingType: "granel", BagsUsed: 2})
	if err != nil {
		t.Fatalf("FulfillOrder: %v", err)
	}
	if got.Status != models.StatusListoDespacho || got.Progress != 100 {
		t.Errorf("estado/avance = %q/%d, se esperaba Listo para Despacho/100", got.Status, got.Progress)
	}
	if got.FulfilledFromStockID == nil || *got.FulfilledFromStockID != stock.ID {
		t.Error("el pedido no recuerda desde qué stock se surtió")
	}
	var gone models.RoastedStock
	if err := s.DB().First(&gone, "id = ?", stock.ID).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("el stock agotado sigue existiendo (err = %v)", err)
	}
}

func TestFulfillOrderFromAnyOpenStatus(t *testing.T) {
	s := newStore(t)
	lot := intakeLot(t, s, 100)
	roast, _ := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 60, RoastedQtyKg: 48})
	stock := roastStock(t, s, roast.ID)

	// un pedido recién creado (Pendiente) se surte directo
	pendiente, _ := CreateOrder(s, OrderInput{ClientName: "Emporio Sur", Type: models.OrderVenta, QuantityKg: 10})
	got, err := FulfillOrder(s, FulfillInput{OrderID: pendiente.ID, StockID: stock.ID})
	if err != nil {
		t.Fatalf("surtir desde Pendiente: %v", err)
	}
	if got.Status != models.StatusListoDespacho || got.Progress != 100 {
		t.Errorf("estado/avance = %q/%d, se esperaba Listo para Despacho/100", got.Status, got.Progress)
	}

	// uno en producción también
	enProd, _ := CreateOrder(s, OrderInput{ClientName: "Emporio Sur", Type: models.OrderVenta, QuantityKg: 10})
	if _, err := SetOrderStatus(s, enProd.ID, models.StatusEnProduccion); err != nil {
		t.Fatalf("SetOrderStatus: %v", err)
	}
	if _, err := FulfillOrder(s, FulfillInput{OrderID: enProd.ID, StockID: stock.ID}); err != nil {
		t.Fatalf("surtir desde En Producción: %v", err)
	}

	// uno ya surtido no se vuelve a surtir: el stock ya se descontó
	before := roastStock(t, s, roast.ID).RemainingQtyKg
	if _, err := FulfillOrder(s, FulfillInput{OrderID: pendiente.ID, StockID: stock.ID}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("resurtir un pedido listo: err = %v, se esperaba ErrInvalidTransition", err)
	}
	if after := roastStock(t, s, roast.ID).RemainingQtyKg; !approx(after, before) {
		t.Errorf("el resurtido rechazado descontó stock: %v → %v", before, after)
	}
}

func TestRoastLotRejectsClosedOrder(t *testing.T) {
	s := newStore(t)
	lot := intakeLot(t, s, 100)
	roast, _ := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 30, RoastedQtyKg: 24})
	stock := roastStock(t, s, roast.ID)

	order, _ := CreateOrder(s, OrderInput{ClientName: "Emporio Sur", Type: models.OrderServicio, QuantityKg: 20})
	if _, err := FulfillOrder(s, FulfillInput{OrderID: order.ID, StockID: stock.ID}); err != nil {
		t.Fatalf("FulfillOrder: %v", err)
	}
	if _, err := ShipOrder(s, ShipInput{OrderID: order.ID, ShippingCost: decimal.Zero}); err != nil {
		t.Fatalf("ShipOrder: %v", err)
	}

	// tostar contra un pedido enviado: rechazado, el pedido no regresa
	if _, err := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 20, RoastedQtyKg: 16, OrderID: &order.ID}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("tostar contra Enviado: err = %v, se esperaba ErrInvalidTransition", err)
	}

	if _, err := InvoiceOrder(s, order.ID); err != nil {
		t.Fatalf("InvoiceOrder: %v", err)
	}
	if _, err := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 20, RoastedQtyKg: 16, OrderID: &order.ID}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("tostar contra Facturado: err = %v, se esperaba ErrInvalidTransition", err)
	}

	// el facturado sigue terminal, con su cantidad y sus tuestes intactos
	var got models.Order
	if err := s.DB().First(&got, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("releyendo pedido: %v", err)
	}
	if got.Status != models.StatusFacturado {
		t.Errorf("estado = %q, se esperaba Facturado", got.Status)
	}
	if !approx(got.QuantityKg, 20) {
		t.Errorf("cantidad del servicio = %v, el tueste rechazado la reescribió", got.QuantityKg)
	}
	if len(got.RelatedRoastIDs) != 0 {
		t.Errorf("tuestes vinculados = %d, el tueste rechazado quedó adherido", len(got.RelatedRoastIDs))
	}
}

func TestShipOrderCreatesExpense(t *testing.T) {
	s := newStore(t)
	lot := intakeLot(t, s, 100)
	roast, _ := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 60, RoastedQtyKg: 48})
	stock := roastStock(t, s, roast.ID)
	order, _ := CreateOrder(s, OrderInput{ClientName: "Emporio Sur", Type: models.OrderVenta, QuantityKg: 10})
	if _, err := FulfillOrder(s, FulfillInput{OrderID: order.ID, StockID: stock.ID}); err != nil {
		t.Fatalf("FulfillOrder: %v", err)
	}

	// Escenario E: despacho con costo 15000 → un único gasto pendiente ligado
	got, err := ShipOrder(s, ShipInput{OrderID: order.ID, ShippingCost: decimal.NewFromInt(15000)})
	if err != nil {
		t.Fatalf("ShipOrder: %v", err)
	}
	if got.Status != models.StatusEnviado || got.ShippedDate == nil {
		t.Errorf("estado/fecha = %q/%v, se esperaba Enviado con fecha", got.Status, got.ShippedDate)
	}

	var expenses []models.Expense
	if err := s.DB().Find(&expenses, "related_order_id = ?", order.ID).Error; err != nil {
		t.Fatalf("buscando gastos: %v", err)
	}
	if len(expenses) != 1 {
		t.Fatalf("gastos creados = %d, se esperaba exactamente 1", len(expenses))
	}
	if !expenses[0].Amount.Equal(decimal.NewFromInt(15000)) || expenses[0].Status != models.ExpensePendiente {
		t.Errorf("gasto = %s/%s, se esperaba 15000/pendiente", expenses[0].Amount, expenses[0].Status)
	}
}

func TestShipOrderZeroCostNoExpense(t *testing.T) {
	s := newStore(t)
	lot := intakeLot(t, s, 100)
	roast, _ := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 60, RoastedQtyKg: 48})
	stock := roastStock(t, s, roast.ID)
	order, _ := CreateOrder(s, OrderInput{ClientName: "Retiro en tienda", Type: models.OrderVenta, QuantityKg: 5})
	if _, err := FulfillOrder(s, FulfillInput{OrderID: order.ID, StockID: stock.ID}); err != nil {
		t.Fatalf("FulfillOrder: %v", err)
	}
	if _, err := ShipOrder(s, ShipInput{OrderID: order.ID, ShippingCost: decimal.Zero}); err != nil {
		t.Fatalf("ShipOrder: %v", err)
	}
	var count int64
	s.DB().Model(&models.Expense{}).Count(&count)
	if count != 0 {
		t.Errorf("despacho con costo 0 creó %d gastos", count)
	}
}

func TestPackageBagsScenario(t *testing.T) {
	s := newStore(t)
	lot := intakeLot(t, s, 10)
	roast, _ := RoastLot(s, RoastInput{GreenCoffeeID: lot.ID, GreenQtyKg: 6, RoastedQtyKg: 5})
	stock := roastStock(t, s, roast.ID)

	format := models.Bag250g
	if _, err := CreateProductionItem(s, ProductionItemInput{Name: "Bolsa kraft 250", Type: models.ItemUnidad, Quantity: 6, Format: &format}); err != nil {
		t.Fatalf("CreateProductionItem: %v", err)
	}

	// Escenario F: 10 bolsas de 250 g desde 5 kg → quedan 2.5 kg y 10 unidades
	bag, err := PackageBags(s, PackageInput{StockID: stock.ID, Format: models.Bag250g, Count: 10})
	if err != nil {
		t.Fatalf("PackageBags: %v", err)
	}
	if bag.Quantity != 10 || bag.CoffeeName != "Caturra" || bag.Type != models.Bag250g {
		t.Errorf("bolsas = %+v, se esperaban 10 de Caturra 250g", bag)
	}
	got := roastStock(t, s, roast.ID)
	if !approx(got.RemainingQtyKg, 2.5) {
		t.Errorf("granel restante = %v, se esperaban 2.5", got.RemainingQtyKg)
	}

	// el insumo enlazado se descuenta solo hasta cero, sin bloquear
	var item models.ProductionItem
	if err := s.DB().First(&item, "name = ?", "Bolsa kraft 250").Error; err != nil {
		t.Fatalf("releyendo insumo: %v", err)
	}
	if !approx(item.Quantity, 0) {
		t.Errorf("insumo restante = %v, se esperaba 0 (truncado)", item.Quantity)
	}

	// un segundo envasado acumula sobre la misma fila (variedad, formato)
	if _, err := PackageBags(s, PackageInput{StockID: stock.ID, Format: models.Bag250g, Count: 4}); err != nil {
		t.Fatalf("segundo envasado: %v", err)
	}
	var rows []models.RetailBagStock
	s.DB().Find(&rows, "coffee_name = ? AND type = ?", "Caturra", models.Bag250g)
	if len(rows) != 1 || rows[0].Quantity != 14 {
		t.Errorf("filas/unidades = %d/%d, se esperaba 1/14", len(rows), rows[0].Quantity)
	}

	// envasar más de lo que queda: rechazado
	if _, err := PackageBags(s, PackageInput{StockID: stock.ID, Format: models.Bag1kg, Count: 5}); !errors.Is(err, ErrInsufficientStock) {
		t.Errorf("envasado > saldo: err = %v, se esperaba ErrInsufficientStock", err)
	}
}

func TestProductionItemOperations(t *testing.T) {
	s := newStore(t)
	gas, err := CreateProductionItem(s, ProductionItemInput{Name: "Gas", Type: models.ItemPorcentaje, Quantity: 35, MinThreshold: 20})
	if err != nil {
		t.Fatalf("CreateProductionItem: %v", err)
	}

	got, err := ConsumeProductionItem(s, gas.ID, 50)
	if err != nil {
		t.Fatalf("ConsumeProductionItem: %v", err)
	}
	if !approx(got.Quantity, 0) {
		t.Errorf("consumo mayor al saldo dejó %v, se esperaba 0", got.Quantity)
	}
	if !got.LowStock() {
		t.Error("el insumo en cero no aparece bajo el umbral")
	}

	// porcentaje: la reposición recarga a 100, sin importar la cantidad
	got, err = RestockProductionItem(s, gas.ID, 3)
	if err != nil {
		t.Fatalf("RestockProductionItem: %v", err)
	}
	if !approx(got.Quantity, 100) {
		t.Errorf("recarga porcentual dejó %v, se esperaba 100", got.Quantity)
	}
}
