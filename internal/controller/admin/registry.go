package admin

import (
	"github.com/go-redsync/redsync/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"exusiai.dev/gateway-admin/internal/app/appconfig"
	"exusiai.dev/gateway-admin/internal/constant"
	"exusiai.dev/gateway-admin/internal/core/registry"
	"exusiai.dev/gateway-admin/internal/pkg/envelope"
	"exusiai.dev/gateway-admin/internal/pkg/fiberstore"
	"exusiai.dev/gateway-admin/internal/pkg/middlewares"
	"exusiai.dev/gateway-admin/internal/server/svr"
	"exusiai.dev/gateway-admin/internal/util/rekuest"
)

type Registry struct {
	fx.In

	Config          *appconfig.Config
	Redis           *redis.Client
	RedSync         *redsync.Redsync
	RegistryService *registry.Service
}

func RegisterRegistry(admin *svr.Admin, c Registry) {
	lookup := c.RegistryService

	admin.Get("/keys/:keyId", lookup.KeyDetails(), c.GetKey)
	admin.Get("/keyrings/:keyringId", c.GetKeyring)
	admin.Get("/apis/:apiId", lookup.APIDetails(true), c.GetAPI)

	idempotency := middlewares.Idempotency(&middlewares.IdempotencyConfig{
		Lifetime:            c.Config.IdempotencyLifetime,
		KeyHeader:           constant.IdempotencyKeyHeader,
		KeepResponseHeaders: []string{fiber.HeaderContentType},
		Storage:             fiberstore.NewRedis(c.Redis, constant.IdempotencyStoragePrefix),
		RedSync:             c.RedSync,
	})

	admin.Post("/keys", idempotency, c.CreateKey)
	admin.Post("/keyrings", idempotency, c.CreateKeyring)
	admin.Post("/apis", idempotency, c.CreateAPI)
}

func (c *Registry) GetKey(ctx *fiber.Ctx) error {
	return envelope.OK(ctx, registry.KeyFromCtx(ctx))
}

// GetKeyring always answers with the member key records embedded.
func (c *Registry) GetKeyring(ctx *fiber.Ctx) error {
	resolved, err := c.RegistryService.ResolveKeyring(ctx.UserContext(), ctx.Params("keyringId"))
	if err != nil {
		return err
	}
	return envelope.OK(ctx, resolved)
}

func (c *Registry) GetAPI(ctx *fiber.Ctx) error {
	return envelope.OK(ctx, registry.APIFromCtx(ctx))
}

func (c *Registry) CreateKey(ctx *fiber.Ctx) error {
	var req registry.CreateKeyRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}
	key, err := c.RegistryService.CreateKey(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return envelope.Created(ctx, key)
}

func (c *Registry) CreateKeyring(ctx *fiber.Ctx) error {
	var req registry.CreateKeyringRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}
	keyring, err := c.RegistryService.CreateKeyring(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return envelope.Created(ctx, keyring)
}

func (c *Registry) CreateAPI(ctx *fiber.Ctx) error {
	var req registry.CreateAPIRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}
	api, err := c.RegistryService.CreateAPI(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return envelope.Created(ctx, api)
}
