package app

import (
	"time"

	"go.uber.org/fx"

	"exusiai.dev/gateway-admin/internal/app/appconfig"
	"exusiai.dev/gateway-admin/internal/app/appcontext"
	"exusiai.dev/gateway-admin/internal/controller"
	"exusiai.dev/gateway-admin/internal/core/registry"
	"exusiai.dev/gateway-admin/internal/core/stats"
	"exusiai.dev/gateway-admin/internal/infra"
	"exusiai.dev/gateway-admin/internal/pkg/logger"
	"exusiai.dev/gateway-admin/internal/server"
	"exusiai.dev/gateway-admin/internal/service"
)

func Options(ctx appcontext.Ctx, additionalOpts ...fx.Option) []fx.Option {
	conf, err := appconfig.Parse(ctx)
	if err != nil {
		panic(err)
	}

	// logger and configuration stay outside the fx graph: fx's own event logger needs them
	logger.Configure(conf)

	baseOpts := []fx.Option{
		// fx meta
		fx.WithLogger(logger.Fx),

		// Misc
		fx.Supply(conf),

		// Infrastructures
		infra.Module(),

		// Core
		stats.Module(),
		registry.Module(),

		// Services
		service.Module(),

		// fx Extra Options
		// the boot ping retries with backoff, so startup may take a few seconds
		fx.StartTimeout(30 * time.Second),
		// StopTimeout is a countermeasure in case the fiber app is not properly shutting down.
		fx.StopTimeout(5 * time.Minute),
	}

	if ctx.Env == appcontext.EnvServer {
		baseOpts = append(baseOpts,
			server.Module(),
			controller.Module(),
		)
	}

	return append(baseOpts, additionalOpts...)
}

func New(ctx appcontext.Ctx, additionalOpts ...fx.Option) *fx.App {
	return fx.New(Options(ctx, additionalOpts...)...)
}
