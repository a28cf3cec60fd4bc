package infra

import (
	"github.com/go-redsync/redsync/v4"
	goredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedSync shares the registry redis for distributed locks; the idempotency middleware is
// its only user.
func RedSync(client *redis.Client) *redsync.Redsync {
	return redsync.New(goredis.NewPool(client))
}
