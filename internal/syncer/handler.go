package syncer

import (
	"tostaduria-backend/internal/models"
	"tostaduria-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

// GET /api/sync/status — estado de la nube para la UI. Con nube sin
// configurar responde configurado=false y el sistema sigue local.
func StatusHandler(r *Reconciler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if r == nil {
			return c.JSON(fiber.Map{"configured": false, "connected": false, "pending_pushes": 0})
		}
		st := r.Status()
		return c.JSON(fiber.Map{
			"configured":     true,
			"connected":      st.Connected,
			"pending_pushes": st.Pending,
		})
	}
}

// POST /api/sync/pull — re-ejecuta el pull completo a pedido del usuario.
// Es la única acción de sincronización que el llamador espera.
func PullHandler(r *Reconciler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if r == nil {
			return fiber.NewError(fiber.StatusConflict, "La nube no está configurada")
		}
		if err := r.Pull(c.Context()); err != nil {
			return fiber.NewError(fiber.StatusBadGateway, "No se pudo descargar desde la nube")
		}
		r.Flush(c.Context())
		return c.JSON(fiber.Map{"pulled": true})
	}
}

type ProfileRequest struct {
	Endpoint   string `json:"endpoint"`
	Credential string `json:"credential"`
}

// PUT /api/sync/profile — persiste el perfil de conexión en settings.
// Toma efecto en el próximo arranque (la conexión se establece al partir).
func ProfileHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ProfileRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if err := s.PutSetting(models.SettingSyncDSN, body.Endpoint); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar el perfil")
		}
		if err := s.PutSetting(models.SettingSyncKey, body.Credential); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar el perfil")
		}
		return c.JSON(fiber.Map{"saved": true})
	}
}
