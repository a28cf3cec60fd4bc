package middlewares

import (
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"

	"exusiai.dev/gateway-admin/internal/constant"
	"exusiai.dev/gateway-admin/internal/pkg/gwerr"
	"exusiai.dev/gateway-admin/internal/util/rekuest"
)

type IdempotencyConfig struct {
	// Lifetime is how long a saved response is replayed for its key.
	Lifetime time.Duration

	// KeyHeader is the request header carrying the idempotency key.
	KeyHeader string

	// KeepResponseHeaders restricts which response headers are saved. Nil keeps all of them.
	KeepResponseHeaders []string

	keepResponseHeadersMap map[string]struct{}

	Storage fiber.Storage

	RedSync *redsync.Redsync

	// Next defines a function to skip this middleware when returned true.
	Next func(c *fiber.Ctx) bool
}

type idempotencyResponse struct {
	// Route is "METHOD path" of the request that produced the response.
	Route      string            `msgpack:"r"`
	StatusCode int               `msgpack:"s"`
	Headers    map[string]string `msgpack:"h"`
	Body       []byte            `msgpack:"b"`
}

// Idempotency replays the saved response of a previous successful request carrying the
// same idempotency key. Concurrent requests with one key are serialized by a redsync mutex.
func Idempotency(config *IdempotencyConfig) fiber.Handler {
	config.keepResponseHeadersMap = make(map[string]struct{})
	for _, header := range config.KeepResponseHeaders {
		config.keepResponseHeadersMap[strings.ToLower(header)] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if config.Next != nil && config.Next(c) {
			return c.Next()
		}

		key := c.Get(config.KeyHeader)
		if key == "" {
			return c.Next()
		}

		if err := rekuest.ValidVar(key, "max=128,alphanum"); err != nil {
			return gwerr.ErrInvalidReq.Msg("invalid idempotency key: idempotency key can only be at most %d characters, consist of only alphanumeric characters", constant.IdempotencyKeyLengthLimit)
		}

		route := c.Method() + " " + c.Path()

		if replayed, err := replaySaved(c, config, key, route); replayed {
			return err
		}

		mutex := config.RedSync.NewMutex("mutex:idempotency-request:"+key,
			redsync.WithExpiry(time.Minute),
			redsync.WithTries(5),
			redsync.WithRetryDelay(time.Millisecond*250),
		)
		if err := mutex.LockContext(c.UserContext()); err != nil {
			log.Err(err).
				Str("evt.name", "http.idempotency.lock.failed").
				Str("key", key).
				Msg("failed to lock idempotency key")
			return gwerr.ErrInternalError.Msg("failed to lock idempotency key: the key is held by another in-flight request")
		}
		defer func() {
			if _, err := mutex.Unlock(); err != nil {
				log.Err(err).
					Str("evt.name", "http.idempotency.unlock.failed").
					Str("key", key).
					Msg("failed to unlock idempotency key")
			}
		}()

		// another holder may have saved a response while we waited for the lock
		if replayed, err := replaySaved(c, config, key, route); replayed {
			return err
		}

		if err := c.Next(); err != nil {
			return err
		}
		if c.Response().StatusCode() >= fiber.StatusBadRequest {
			return nil
		}

		b, err := msgpack.Marshal(captureResponse(c, config, route))
		if err != nil {
			return err
		}
		if err := config.Storage.Set(key, b, config.Lifetime); err != nil {
			log.Error().
				Str("evt.name", "http.idempotency.response.save.failed").
				Err(err).
				Msg("error saving the idempotency response")
			return err
		}

		c.Set(constant.IdempotencyHeader, "saved")
		return nil
	}
}

func captureResponse(c *fiber.Ctx, conf *IdempotencyConfig, route string) *idempotencyResponse {
	response := &idempotencyResponse{
		Route:      route,
		StatusCode: c.Response().StatusCode(),
		Headers:    make(map[string]string),
		Body:       append([]byte(nil), c.Response().Body()...),
	}
	c.Response().Header.VisitAll(func(k, v []byte) {
		header := string(k)
		if conf.KeepResponseHeaders != nil {
			if _, ok := conf.keepResponseHeadersMap[strings.ToLower(header)]; !ok {
				return
			}
		}
		response.Headers[header] = string(v)
	})
	return response
}

// replaySaved writes the saved response for key, if any. It reports whether the
// request was answered.
func replaySaved(c *fiber.Ctx, conf *IdempotencyConfig, key, route string) (bool, error) {
	b, err := conf.Storage.Get(key)
	if err != nil {
		log.Warn().
			Str("evt.name", "http.idempotency.response.load.failed").
			Str("key", key).
			Err(err).
			Msg("error loading the idempotency response, handling the request afresh")
		return false, nil
	}
	if b == nil {
		return false, nil
	}

	var response idempotencyResponse
	if err := msgpack.Unmarshal(b, &response); err != nil {
		return true, err
	}
	if response.Route != route {
		return true, gwerr.ErrInvalidReq.Msg("idempotency key was already used for %s", response.Route)
	}

	if l := log.Debug(); l.Enabled() {
		l.Str("evt.name", "http.idempotency.hit").
			Str("key", key).
			Msg("replaying saved response")
	}

	c.Status(response.StatusCode)
	for header, value := range response.Headers {
		c.Set(header, value)
	}
	c.Set(constant.IdempotencyHeader, "hit")
	if len(response.Body) > 0 {
		return true, c.Send(response.Body)
	}
	return true, nil
}
