package httpserver

import (
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"exusiai.dev/gateway-admin/internal/pkg/envelope"
	"exusiai.dev/gateway-admin/internal/pkg/flog"
	"exusiai.dev/gateway-admin/internal/pkg/gwerr"
	"exusiai.dev/gateway-admin/internal/pkg/middlewares"
)

func handleCustomError(ctx *fiber.Ctx, e *gwerr.GatewayError) error {
	flog.WarnFrom(ctx).
		Err(e).
		Str("evt.name", "http.error").
		Int("status", e.StatusCode).
		Msg(e.Message)

	body := fiber.Map{
		"meta":    envelope.NewMeta(e.StatusCode),
		"code":    e.ErrorCode,
		"message": e.Message,
	}
	if e.Extras != nil {
		for k, v := range *e.Extras {
			body[k] = v
		}
	}

	return ctx.Status(e.StatusCode).JSON(body)
}

// asGatewayError extracts the GatewayError carried by err, either directly or through a
// domain error implementing gwerr.Convertible.
func asGatewayError(err error) (*gwerr.GatewayError, bool) {
	var ge *gwerr.GatewayError
	if errors.As(err, &ge) {
		return ge, true
	}
	var ce gwerr.Convertible
	if errors.As(err, &ce) {
		return ce.GatewayError(), true
	}
	return nil, false
}

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	if e, ok := asGatewayError(err); ok && e.StatusCode < fiber.StatusInternalServerError {
		return handleCustomError(ctx, e)
	} else if ok {
		// server side failures with a known shape are still reported
		capture(ctx, err, e.StatusCode)
		return handleCustomError(ctx, e)
	}

	re := *gwerr.ErrInternalError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		re.StatusCode = fe.Code
		re.ErrorCode = "UNKNOWN_ERROR"
		re.Message = fe.Message
		if fe.Code < fiber.StatusInternalServerError {
			return handleCustomError(ctx, &re)
		}
	}

	flog.ErrorFrom(ctx).
		Stack().
		Err(err).
		Str("evt.name", "http.error.internal").
		Int("status", re.StatusCode).
		Msg("internal server error")
	capture(ctx, err, re.StatusCode)

	return handleCustomError(ctx, &re)
}

func capture(ctx *fiber.Ctx, err error, status int) {
	hub := middlewares.SentryHub(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("status", strconv.Itoa(status))
		hub.CaptureException(err)
	})
}
