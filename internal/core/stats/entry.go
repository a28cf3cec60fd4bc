package stats

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module("stats",
		fx.Provide(
			NewConfig,
			fx.Annotate(NewRedisReader, fx.As(new(BatchReader))),
			NewService,
		),
	)
}
