package meta

import (
	"github.com/gofiber/fiber/v2"

	"exusiai.dev/gateway-admin/internal/pkg/envelope"
)

func RegisterIndex(app *fiber.App) {
	app.Get("/api", func(c *fiber.Ctx) error {
		return envelope.OK(c, fiber.Map{
			"message": "gateway admin API",
			"routes":  []string{"/api/admin", "/api/_/bininfo", "/api/_/health"},
		})
	})
}
