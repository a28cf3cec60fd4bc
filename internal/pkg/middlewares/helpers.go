package middlewares

import (
	"github.com/gofiber/fiber/v2"
)

// Chained mounts middlewares on r in order.
func Chained(r fiber.Router, middlewares ...fiber.Handler) {
	for _, middleware := range middlewares {
		r.Use(middleware)
	}
}
