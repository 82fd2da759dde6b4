package auth

import (
	"tostaduria-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  string `json:"user"`
}

// POST /api/auth/login — login del operador único de la tostaduría.
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if cfg.OperatorHash == "" {
			return fiber.NewError(fiber.StatusServiceUnavailable, "El login no está configurado")
		}
		if body.User != cfg.OperatorUser {
			return fiber.NewError(fiber.StatusUnauthorized, "Credenciales incorrectas")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(cfg.OperatorHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Credenciales incorrectas")
		}

		token, err := GenerateToken(cfg.JWTSecret, body.User)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el token")
		}
		return c.JSON(LoginResponse{Token: token, User: body.User})
	}
}
