package registry

import (
	"github.com/gofiber/fiber/v2"

	"exusiai.dev/gateway-admin/internal/pkg/gwerr"
)

const (
	localsKey     = "registry.key"
	localsKeyring = "registry.keyring"
	localsAPI     = "registry.api"
)

// KeyDetails loads the key named by the :keyId route param into the request locals.
func (s *Service) KeyDetails() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		key, err := s.GetKey(ctx.UserContext(), ctx.Params("keyId"))
		if err != nil {
			return err
		}
		ctx.Locals(localsKey, key)
		return ctx.Next()
	}
}

// KeyringDetails loads the keyring named by the :keyringId route param.
func (s *Service) KeyringDetails() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		keyring, err := s.GetKeyring(ctx.UserContext(), ctx.Params("keyringId"))
		if err != nil {
			return err
		}
		ctx.Locals(localsKeyring, keyring)
		return ctx.Next()
	}
}

// APIDetails loads the api named by the :apiId route param. When required is false a
// missing api is tolerated and the request proceeds without one.
func (s *Service) APIDetails(required bool) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		api, err := s.GetAPI(ctx.UserContext(), ctx.Params("apiId"))
		if err != nil {
			if !required && gwerr.IsCode(err, gwerr.CodeNotFound) {
				return ctx.Next()
			}
			return err
		}
		ctx.Locals(localsAPI, api)
		return ctx.Next()
	}
}

func KeyFromCtx(ctx *fiber.Ctx) *Key {
	v, _ := ctx.Locals(localsKey).(*Key)
	return v
}

func KeyringFromCtx(ctx *fiber.Ctx) *Keyring {
	v, _ := ctx.Locals(localsKeyring).(*Keyring)
	return v
}

func APIFromCtx(ctx *fiber.Ctx) *API {
	v, _ := ctx.Locals(localsAPI).(*API)
	return v
}
