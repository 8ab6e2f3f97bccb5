// Package redis caches assembled dashboard read models so repeated
// dashboard requests do not recompute scores. Entries are written with
// a TTL and dropped wholesale whenever the underlying data mutates.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/regtrace/regtrace/pkg/config"
	"github.com/regtrace/regtrace/pkg/errors"
)

// SnapshotCache stores serialized read models under namespaced keys
type SnapshotCache interface {
	// Get loads a cached value into dest; ok is false on a miss
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores a value under the default TTL
	Set(ctx context.Context, key string, value interface{}) error

	// Invalidate drops every key in the namespace
	Invalidate(ctx context.Context) error

	// Ping checks connectivity
	Ping(ctx context.Context) error
}

type snapshotCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSnapshotCache connects to Redis and returns the cache
func NewSnapshotCache(cfg config.RedisConfig) (SnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.InfrastructureError("redis", err)
	}

	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &snapshotCache{client: client, prefix: cfg.KeyPrefix, ttl: ttl}, nil
}

func (c *snapshotCache) key(k string) string {
	return c.prefix + k
}

func (c *snapshotCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, errors.InfrastructureError("redis", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// A corrupt entry behaves like a miss so the caller recomputes
		return false, nil
	}
	return true, nil
}

func (c *snapshotCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.InfrastructureError("redis", err)
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return errors.InfrastructureError("redis", err)
	}
	return nil
}

func (c *snapshotCache) Invalidate(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", 100).Result()
		if err != nil {
			return errors.InfrastructureError("redis", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return errors.InfrastructureError("redis", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

func (c *snapshotCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return errors.InfrastructureError("redis", err)
	}
	return nil
}

// NopCache is a SnapshotCache that never hits; used when Redis is not
// configured.
type NopCache struct{}

func (NopCache) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (NopCache) Set(context.Context, string, interface{}) error         { return nil }
func (NopCache) Invalidate(context.Context) error                       { return nil }
func (NopCache) Ping(context.Context) error                             { return nil }
