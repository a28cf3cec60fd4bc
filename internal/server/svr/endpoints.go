package svr

import (
	"github.com/gofiber/fiber/v2"
)

// Admin is the /api/admin route group serving statistics and entity records.
type Admin struct {
	fiber.Router
}

// Meta is the /api/_ route group serving build info and health.
type Meta struct {
	fiber.Router
}

func CreateEndpointGroups(app *fiber.App) (*Admin, *Meta) {
	admin := app.Group("/api/admin")
	meta := app.Group("/api/_")

	return &Admin{Router: admin}, &Meta{Router: meta}
}
