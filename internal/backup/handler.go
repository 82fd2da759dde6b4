package backup

import (
	"fmt"

	"tostaduria-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

// GET /api/backup/export — descarga el almacén completo como documento.
func ExportHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := Export(s)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo exportar el respaldo")
		}
		name := fmt.Sprintf("respaldo-%s.json", doc.ExportedAt.Format("2006-01-02"))
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		return c.JSON(doc)
	}
}

// POST /api/backup/import — reemplazo total del almacén con el documento.
func ImportHandler(s *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var doc Document
		if err := c.BodyParser(&doc); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "El documento de respaldo no es válido")
		}
		if doc.Collections == nil {
			return fiber.NewError(fiber.StatusBadRequest, "El documento no trae colecciones")
		}
		if err := Import(s, &doc); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo importar el respaldo")
		}
		return c.JSON(fiber.Map{"imported_at": doc.ExportedAt})
	}
}
