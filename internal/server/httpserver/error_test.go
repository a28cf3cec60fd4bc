package httpserver

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exusiai.dev/gateway-admin/internal/pkg/gwerr"
)

type convertibleErr struct{}

func (convertibleErr) Error() string { return "domain failure" }

func (convertibleErr) GatewayError() *gwerr.GatewayError {
	return gwerr.ErrStorageUnavailable.Msg("storage down")
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/gateway", func(c *fiber.Ctx) error {
		return gwerr.ErrInvalidReq.WithExtras(gwerr.Extras{"valid": []string{"minutes"}})
	})
	app.Get("/wrapped", func(c *fiber.Ctx) error {
		return errors.Wrap(convertibleErr{}, "stats")
	})
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return fiber.ErrMethodNotAllowed
	})
	app.Get("/plain", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	tests := []struct {
		path   string
		status int
		code   string
		extra  string
	}{
		{"/gateway", fiber.StatusBadRequest, gwerr.CodeInvalidRequest, "valid"},
		{"/wrapped", fiber.StatusServiceUnavailable, gwerr.CodeStorageUnavailable, ""},
		{"/fiber", fiber.StatusMethodNotAllowed, "UNKNOWN_ERROR", ""},
		{"/plain", fiber.StatusInternalServerError, gwerr.CodeInternalError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			raw, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var body map[string]any
			require.NoError(t, json.Unmarshal(raw, &body))

			assert.Equal(t, tt.code, body["code"])
			meta := body["meta"].(map[string]any)
			assert.EqualValues(t, tt.status, meta["status_code"])
			if tt.extra != "" {
				assert.Contains(t, body, tt.extra)
			}
		})
	}
}

func TestErrorHandlerCapturesServerErrors(t *testing.T) {
	boom := func(c *fiber.Ctx) error {
		return gwerr.ErrStorageUnavailable.Msg("storage down")
	}

	t.Run("WithoutSentryMiddleware", func(t *testing.T) {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
		app.Get("/", boom)

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("WithSentryMiddleware", func(t *testing.T) {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
		app.Use(fibersentry.New(fibersentry.Config{}))
		app.Get("/", boom)

		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}
