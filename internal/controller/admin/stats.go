package admin

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"gopkg.in/guregu/null.v3"

	"exusiai.dev/gateway-admin/internal/constant"
	"exusiai.dev/gateway-admin/internal/core/registry"
	"exusiai.dev/gateway-admin/internal/core/stats"
	"exusiai.dev/gateway-admin/internal/pkg/cachectrl"
	"exusiai.dev/gateway-admin/internal/pkg/envelope"
	"exusiai.dev/gateway-admin/internal/pkg/gwerr"
	"exusiai.dev/gateway-admin/internal/server/svr"
	"exusiai.dev/gateway-admin/internal/util/rekuest"
)

type Stats struct {
	fx.In

	StatsService    *stats.Service
	RegistryService *registry.Service
}

func RegisterStats(admin *svr.Admin, c Stats) {
	lookup := c.RegistryService

	admin.Get("/stats/granularities", c.Granularities)

	admin.Get("/keys/:keyId/stats", lookup.KeyDetails(), c.KeyStats)
	admin.Get("/keyrings/:keyringId/stats", lookup.KeyringDetails(), c.KeyringStats)
	admin.Get("/apis/:apiId/stats", lookup.APIDetails(true), c.APIStats)
	// stats of a key outlive the api it was scoped to
	admin.Get("/apis/:apiId/keys/:keyId/stats", lookup.APIDetails(false), lookup.KeyDetails(), c.APIKeyStats)
}

type statsParams struct {
	Granularity null.String `query:"granularity" validate:"omitempty,max=16"`
	From        null.String `query:"from" validate:"omitempty,number"`
	To          null.String `query:"to" validate:"omitempty,number"`
	// Classes is a comma separated subset of the configured response classes.
	Classes null.String `query:"classes" validate:"omitempty,max=256"`
}

func optionalQuery(ctx *fiber.Ctx, key string) null.String {
	v := ctx.Query(key)
	return null.NewString(v, v != "")
}

func (c *Stats) parseQuery(ctx *fiber.Ctx) (stats.Query, error) {
	params := statsParams{
		Granularity: optionalQuery(ctx, "granularity"),
		From:        optionalQuery(ctx, "from"),
		To:          optionalQuery(ctx, "to"),
		Classes:     optionalQuery(ctx, "classes"),
	}
	if err := rekuest.ValidStruct(&params); err != nil {
		return stats.Query{}, err
	}

	granularity, err := stats.ResolveGranularity(params.Granularity)
	if err != nil {
		return stats.Query{}, err
	}
	r, err := c.StatsService.ParseTimeRange(params.From, params.To)
	if err != nil {
		return stats.Query{}, err
	}

	q := stats.Query{Range: r, Granularity: granularity}
	if params.Classes.Valid {
		known := c.StatsService.ResponseClasses()
		for _, class := range strings.Split(params.Classes.String, ",") {
			class = strings.TrimSpace(class)
			if !lo.Contains(known, class) {
				return stats.Query{}, gwerr.ErrInvalidReq.
					Msg("unknown response class %q", class).
					WithExtras(gwerr.Extras{"valid": known})
			}
			q.ResponseClasses = append(q.ResponseClasses, class)
		}
	}
	return q, nil
}

type resolvedStats struct {
	Record any               `json:"record"`
	Stats  stats.MergedStats `json:"stats"`
}

// respond runs the query for the entity at pathParts. When the request carries the
// resolve flag, record is called and its result embedded next to the stats.
func (c *Stats) respond(ctx *fiber.Ctx, record func() (any, error), pathParts ...string) error {
	q, err := c.parseQuery(ctx)
	if err != nil {
		return err
	}
	q.PathParts = pathParts

	result, err := c.StatsService.Run(ctx.UserContext(), q)
	if err != nil {
		return err
	}
	cachectrl.ForRange(ctx, q.Range.To, time.Now())

	if !ctx.Context().QueryArgs().Has(constant.ResolveQueryKey) {
		return envelope.OK(ctx, result)
	}

	rec, err := record()
	if err != nil {
		return err
	}
	return envelope.OK(ctx, resolvedStats{Record: rec, Stats: result})
}

func recordOf(v any) func() (any, error) {
	return func() (any, error) { return v, nil }
}

func (c *Stats) Granularities(ctx *fiber.Ctx) error {
	return envelope.OK(ctx, fiber.Map{
		"default":       stats.DefaultGranularity,
		"granularities": stats.ValidGranularities(),
	})
}

func (c *Stats) KeyStats(ctx *fiber.Ctx) error {
	key := registry.KeyFromCtx(ctx)
	return c.respond(ctx, recordOf(key), string(registry.KindKey), key.ID)
}

func (c *Stats) KeyringStats(ctx *fiber.Ctx) error {
	keyring := registry.KeyringFromCtx(ctx)
	return c.respond(ctx, func() (any, error) {
		return c.RegistryService.ResolveKeyring(ctx.UserContext(), keyring.ID)
	}, string(registry.KindKeyring), keyring.ID)
}

func (c *Stats) APIStats(ctx *fiber.Ctx) error {
	api := registry.APIFromCtx(ctx)
	return c.respond(ctx, recordOf(api), string(registry.KindAPI), api.ID)
}

func (c *Stats) APIKeyStats(ctx *fiber.Ctx) error {
	key := registry.KeyFromCtx(ctx)
	apiID := ctx.Params("apiId")
	return c.respond(ctx, func() (any, error) {
		return fiber.Map{
			"api": registry.APIFromCtx(ctx),
			"key": key,
		}, nil
	}, string(registry.KindAPI), apiID, string(registry.KindKey), key.ID)
}
