package stats

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"exusiai.dev/gateway-admin/internal/app/appconfig"
	"exusiai.dev/gateway-admin/internal/pkg/observability"
)

const breakerName = "stats-redis"

// RedisReader implements BatchReader with one MULTI/EXEC transaction of HGETALLs per batch.
type RedisReader struct {
	client  redis.Cmdable
	delim   string
	breaker *gobreaker.CircuitBreaker
}

var _ BatchReader = (*RedisReader)(nil)

func NewRedisReader(client *redis.Client, conf *appconfig.Config) *RedisReader {
	return newRedisReader(client, conf)
}

func newRedisReader(client redis.Cmdable, conf *appconfig.Config) *RedisReader {
	failures := conf.StatsBreakerFailures
	settings := gobreaker.Settings{
		Name:    breakerName,
		Timeout: conf.StatsBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return failures > 0 && counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// a sibling branch failing cancels this read; that says nothing about redis health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.StorageBreakerState.WithLabelValues(name).Set(float64(to))
			log.Warn().
				Str("evt.name", "stats.storage.breaker").
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("statistics storage circuit breaker changed state")
		},
	}

	return &RedisReader{
		client:  client,
		delim:   conf.StatsKeyDelimiter,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (r *RedisReader) MultiGet(ctx context.Context, keys []StatKey) ([]DayBucket, error) {
	res, err := r.breaker.Execute(func() (any, error) {
		return r.multiGet(ctx, keys)
	})
	if err != nil {
		return nil, err
	}
	return res.([]DayBucket), nil
}

func (r *RedisReader) multiGet(ctx context.Context, keys []StatKey) ([]DayBucket, error) {
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.HGetAll(ctx, key.Render(r.delim))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "redis: batch read")
	}

	buckets := make([]DayBucket, len(cmds))
	for i, cmd := range cmds {
		buckets[i] = DayBucket(cmd.Val())
	}
	return buckets, nil
}
