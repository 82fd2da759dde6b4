package main

import (
	"context"
	"errors"
	"strings"

	"tostaduria-backend/internal/auth"
	"tostaduria-backend/internal/backup"
	"tostaduria-backend/internal/config"
	"tostaduria-backend/internal/expense"
	"tostaduria-backend/internal/inventory"
	"tostaduria-backend/internal/ledger"
	"tostaduria-backend/internal/models"
	"tostaduria-backend/internal/orders"
	"tostaduria-backend/internal/production"
	"tostaduria-backend/internal/store"
	"tostaduria-backend/internal/syncer"
	"tostaduria-backend/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()
	log := logger.Must(logger.New())
	defer func() { _ = log.Sync() }()

	st, err := store.Open(cfg.DatabasePath, logger.Named(log, "store"))
	if err != nil {
		log.Fatal("no se pudo abrir el almacén local", zap.Error(err))
	}

	ctx := context.Background()

	// Perfil de conexión: el entorno manda; si no, el guardado en settings.
	// Hacen falta las dos mitades (endpoint y credencial) para salir de
	// modo local.
	dsn := cfg.SyncDSN
	if dsn == "" {
		dsn, _ = st.GetSetting(models.SettingSyncDSN)
	}
	key := cfg.SyncKey
	if key == "" {
		key, _ = st.GetSetting(models.SettingSyncKey)
	}

	var rec *syncer.Reconciler
	if dsn != "" && key != "" {
		remote, err := syncer.DialPostgres(syncer.WithCredential(dsn, key), logger.Named(log, "syncer"))
		if err != nil {
			// la nube nunca bloquea: se parte en modo local
			log.Warn("no se pudo conectar a la nube, modo local", zap.Error(err))
		} else {
			rec = syncer.New(st, remote, logger.Named(log, "syncer"))
			if err := rec.Start(ctx); err != nil {
				log.Warn("pull inicial fallido, se reintenta en segundo plano", zap.Error(err))
			}
		}
	} else {
		log.Info("perfil de nube incompleto: operando solo con el almacén local")
	}

	// Tareas programadas: reintento de push pendientes y respaldo nocturno.
	sched := cron.New()
	if rec != nil {
		_, _ = sched.AddFunc("@every 2m", func() { rec.Flush(ctx) })
	}
	_, _ = sched.AddFunc("0 3 * * *", func() {
		if path, err := backup.ExportToFile(st, cfg.BackupDir); err != nil {
			log.Warn("respaldo nocturno fallido", zap.Error(err))
		} else {
			log.Info("respaldo nocturno escrito", zap.String("path", path))
		}
	})
	sched.Start()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			switch {
			case errors.Is(err, ledger.ErrInsufficientStock),
				errors.Is(err, ledger.ErrInvalidTransition):
				return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
					"error": err.Error(),
				})
			case errors.Is(err, ledger.ErrNotFound):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Error("error inesperado", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error inesperado del servidor",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// Público
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protegido
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	// Lotes de café verde
	protected.Post("/lots", inventory.CreateLotHandler(st))
	protected.Get("/lots", inventory.ListLotsHandler(st))

	// Tuestes
	protected.Post("/roasts", inventory.CreateRoastHandler(st))
	protected.Get("/roasts", inventory.ListRoastsHandler(st))

	// Stock tostado a granel
	protected.Get("/roasted-stocks", inventory.ListStocksHandler(st))
	protected.Post("/roasted-stocks/:id/select", inventory.SelectStockHandler(st))
	protected.Post("/roasted-stocks/:id/package", inventory.PackageBagsHandler(st))

	// Stock envasado
	protected.Get("/retail-bags", inventory.ListRetailBagsHandler(st))
	protected.Post("/retail-bags/:id/sell", inventory.SellRetailBagsHandler(st))

	// Pedidos
	protected.Post("/orders", orders.CreateOrderHandler(st))
	protected.Get("/orders", orders.ListOrdersHandler(st))
	protected.Post("/orders/:id/fulfill", orders.FulfillOrderHandler(st))
	protected.Post("/orders/:id/ship", orders.ShipOrderHandler(st))
	protected.Post("/orders/:id/invoice", orders.InvoiceOrderHandler(st))
	protected.Put("/orders/:id/status", orders.SetOrderStatusHandler(st))
	protected.Get("/orders/:id/trace", orders.TraceOrderHandler(st))

	// Gastos
	protected.Post("/expenses", expense.CreateExpenseHandler(st))
	protected.Get("/expenses", expense.ListExpensesHandler(st))
	protected.Post("/expenses/:id/pay", expense.PayExpenseHandler(st))

	// Insumos de producción
	protected.Post("/production-items", production.CreateItemHandler(st))
	protected.Get("/production-items", production.ListItemsHandler(st))
	protected.Post("/production-items/:id/restock", production.RestockItemHandler(st))
	protected.Post("/production-items/:id/consume", production.ConsumeItemHandler(st))

	// Respaldo
	protected.Get("/backup/export", backup.ExportHandler(st))
	protected.Post("/backup/import", backup.ImportHandler(st))

	// Sincronización
	protected.Get("/sync/status", syncer.StatusHandler(rec))
	protected.Post("/sync/pull", syncer.PullHandler(rec))
	protected.Put("/sync/profile", syncer.ProfileHandler(st))

	log.Info("servidor escuchando", zap.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal("el servidor se detuvo", zap.Error(err))
	}
}
