package cache

import (
	"errors"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("cache: key not found")

// NewLocal creates a keyed in-process cache whose entries expire after ttl.
func NewLocal[T any](prefix string, ttl time.Duration) *Local[T] {
	return &Local[T]{
		prefix: prefix + ":",
		ttl:    ttl,
		c:      cache.New(ttl, 2*ttl+time.Minute),
	}
}

type Local[T any] struct {
	// m serializes the slow path of MutexGetSet
	m sync.Mutex

	prefix string
	ttl    time.Duration

	c *cache.Cache
}

func (c *Local[T]) key(key string) string {
	return c.prefix + key
}

func (c *Local[T]) Get(key string) (T, error) {
	var zero T
	v, ok := c.c.Get(c.key(key))
	if !ok {
		return zero, ErrNotFound
	}
	return v.(T), nil
}

func (c *Local[T]) Set(key string, value T) {
	if l := log.Trace(); l.Enabled() {
		l.Str("key", c.key(key)).Msg("setting value to local cache")
	}
	c.c.Set(c.key(key), value, c.ttl)
}

func (c *Local[T]) Delete(key string) {
	c.c.Delete(c.key(key))
}

func (c *Local[T]) Flush() {
	c.c.Flush()
}

// MutexGetSet returns the cached value for key, or, when absent, calls valueFunc under a
// mutex (re-checking the cache first), stores its result and returns it. Errors from
// valueFunc are returned as is and never cached.
func (c *Local[T]) MutexGetSet(key string, valueFunc func() (T, error)) (T, error) {
	if v, err := c.Get(key); err == nil {
		return v, nil
	}

	c.m.Lock()
	defer c.m.Unlock()

	if v, err := c.Get(key); err == nil {
		return v, nil
	}

	v, err := valueFunc()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}
