package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"exusiai.dev/gateway-admin/internal/constant"
	"exusiai.dev/gateway-admin/internal/pkg/flog"
)

// RequestID copies the id assigned by the logger chain into the request locals.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := flog.IDFromFiberCtx(c); ok {
			c.Locals(constant.ContextKeyRequestID, id.String())
		}
		return c.Next()
	}
}
