// Package cache is a JSON cache-aside layer over Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/todo-backend/internal/observability"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

// Cache stores JSON-encoded values under a key prefix.
type Cache interface {
	// Get unmarshals the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, keys ...string) error
	// Generation returns the counter stored under key, zero when unset.
	Generation(ctx context.Context, key string) (int64, error)
	// Bump increments the counter under key and returns the new value.
	// Counters never expire, so a reset cannot revive an older entry.
	Bump(ctx context.Context, key string) (int64, error)
	Stats() Stats
}

type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Errors int64 `json:"errors"`
}

type redisCache struct {
	client  *goredis.Client
	prefix  string
	ttl     time.Duration
	log     *logger.Logger
	metrics *observability.Metrics

	hits   atomic.Int64
	misses atomic.Int64
	errs   atomic.Int64
}

func New(client *goredis.Client, prefix string, ttl time.Duration, log *logger.Logger, metrics *observability.Metrics) Cache {
	if log == nil {
		log = logger.Nop()
	}
	return &redisCache{
		client:  client,
		prefix:  prefix,
		ttl:     ttl,
		log:     log.With("service", "RedisCache"),
		metrics: metrics,
	}
}

func (c *redisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	fullKey := c.prefix + key
	data, err := c.client.Get(ctx, fullKey).Bytes()
	if errors.Is(err, goredis.Nil) {
		c.misses.Add(1)
		c.metrics.IncCache("miss")
		return false, nil
	}
	if err != nil {
		c.errs.Add(1)
		c.metrics.IncCache("error")
		return false, fmt.Errorf("cache get error: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.errs.Add(1)
		c.metrics.IncCache("error")
		return false, fmt.Errorf("cache unmarshal error: %w", err)
	}
	c.hits.Add(1)
	c.metrics.IncCache("hit")
	c.log.Debug("cache hit", "key", fullKey)
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal error: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.errs.Add(1)
		c.metrics.IncCache("error")
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, c.prefix+k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		c.errs.Add(1)
		c.metrics.IncCache("error")
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (c *redisCache) Generation(ctx context.Context, key string) (int64, error) {
	gen, err := c.client.Get(ctx, c.prefix+key).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		c.errs.Add(1)
		c.metrics.IncCache("error")
		return 0, fmt.Errorf("cache generation error: %w", err)
	}
	return gen, nil
}

func (c *redisCache) Bump(ctx context.Context, key string) (int64, error) {
	gen, err := c.client.Incr(ctx, c.prefix+key).Result()
	if err != nil {
		c.errs.Add(1)
		c.metrics.IncCache("error")
		return 0, fmt.Errorf("cache bump error: %w", err)
	}
	c.metrics.IncCache("invalidate")
	return gen, nil
}

func (c *redisCache) Stats() Stats {
	return Stats{Hits: c.hits.Load(), Misses: c.misses.Load(), Errors: c.errs.Load()}
}

// Noop never stores anything; every Get is a miss.
type Noop struct{}

func (Noop) Get(context.Context, string, any) (bool, error)    { return false, nil }
func (Noop) Set(context.Context, string, any) error            { return nil }
func (Noop) Delete(context.Context, ...string) error           { return nil }
func (Noop) Generation(context.Context, string) (int64, error) { return 0, nil }
func (Noop) Bump(context.Context, string) (int64, error)       { return 0, nil }
func (Noop) Stats() Stats                                      { return Stats{} }
