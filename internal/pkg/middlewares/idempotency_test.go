package middlewares

import (
	"bytes"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/vmihailenco/msgpack/v5"

	"exusiai.dev/gateway-admin/internal/constant"
	"exusiai.dev/gateway-admin/internal/pkg/gwerr"
)

type mapStorage struct {
	data   map[string][]byte
	getErr error
}

func (s *mapStorage) Get(key string) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.data[key], nil
}

func (s *mapStorage) Set(key string, val []byte, _ time.Duration) error {
	s.data[key] = val
	return nil
}

func (s *mapStorage) Delete(key string) error {
	delete(s.data, key)
	return nil
}

func (s *mapStorage) Reset() error {
	s.data = map[string][]byte{}
	return nil
}

func (s *mapStorage) Close() error { return nil }

func withCtx(t *testing.T, fn func(c *fiber.Ctx)) {
	app := fiber.New()
	c := app.AcquireCtx(&fasthttp.RequestCtx{})
	defer app.ReleaseCtx(c)
	fn(c)
}

func TestReplaySaved(t *testing.T) {
	saved, err := msgpack.Marshal(idempotencyResponse{
		Route:      "POST /keys",
		StatusCode: fiber.StatusCreated,
		Headers:    map[string]string{"X-Answer": "42"},
		Body:       []byte(`{"id":"key_1"}`),
	})
	require.NoError(t, err)

	t.Run("Hit", func(t *testing.T) {
		conf := &IdempotencyConfig{Storage: &mapStorage{data: map[string][]byte{"k": saved}}}
		withCtx(t, func(c *fiber.Ctx) {
			answered, err := replaySaved(c, conf, "k", "POST /keys")
			require.NoError(t, err)
			assert.True(t, answered)
			assert.Equal(t, fiber.StatusCreated, c.Response().StatusCode())
			assert.Equal(t, "42", string(c.Response().Header.Peek("X-Answer")))
			assert.Equal(t, "hit", string(c.Response().Header.Peek(constant.IdempotencyHeader)))
			assert.Equal(t, `{"id":"key_1"}`, string(c.Response().Body()))
		})
	})

	t.Run("Miss", func(t *testing.T) {
		conf := &IdempotencyConfig{Storage: &mapStorage{data: map[string][]byte{}}}
		withCtx(t, func(c *fiber.Ctx) {
			answered, err := replaySaved(c, conf, "k", "POST /keys")
			require.NoError(t, err)
			assert.False(t, answered)
		})
	})

	t.Run("OtherRoute", func(t *testing.T) {
		conf := &IdempotencyConfig{Storage: &mapStorage{data: map[string][]byte{"k": saved}}}
		withCtx(t, func(c *fiber.Ctx) {
			answered, err := replaySaved(c, conf, "k", "POST /apis")
			assert.True(t, answered)
			assert.True(t, gwerr.IsCode(err, gwerr.CodeInvalidRequest), "got %v", err)
		})
	})

	t.Run("StorageErrorIsLoggedAndTreatedAsMiss", func(t *testing.T) {
		var buf bytes.Buffer
		prev := log.Logger
		log.Logger = zerolog.New(&buf)
		defer func() { log.Logger = prev }()

		conf := &IdempotencyConfig{Storage: &mapStorage{getErr: errors.New("connection refused")}}
		withCtx(t, func(c *fiber.Ctx) {
			answered, err := replaySaved(c, conf, "k", "POST /keys")
			require.NoError(t, err)
			assert.False(t, answered)
		})
		assert.Contains(t, buf.String(), "http.idempotency.response.load.failed")
		assert.Contains(t, buf.String(), "connection refused")
	})
}
