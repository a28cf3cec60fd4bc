package infra

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"exusiai.dev/gateway-admin/internal/app/appconfig"
)

func Redis(conf *appconfig.Config, lc fx.Lifecycle) (*redis.Client, error) {
	u, err := redis.ParseURL(conf.RedisURL)
	if err != nil {
		log.Error().Err(err).Msg("infra: redis: failed to parse redis url")
		return nil, err
	}

	client := redis.NewClient(u)

	// the stats store may still be starting when the admin service boots
	err = retry.Do(
		func() error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			return client.Ping(ctx).Err()
		},
		retry.Attempts(conf.RedisConnectAttempts),
		retry.Delay(time.Millisecond*500),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().
				Str("evt.name", "infra.redis.ping_retry").
				Uint("attempt", n+1).
				Err(err).
				Msg("infra: redis: ping failed, retrying")
		}),
	)
	if err != nil {
		log.Error().Err(err).Msg("infra: redis: failed to ping database")
		_ = client.Close()
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}
