package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kirtilabs/kirti/config"
)

// Debug is a raw view over the cache for the debug-cache tool. It bypasses
// the typed accessors so every key under the prefix can be inspected.
type Debug struct {
	rdb *redis.Client
	ctx context.Context
}

// NewDebug connects to Redis for inspection. Unlike New, an empty address
// is an error here; there is nothing to inspect without a cache.
func NewDebug(cfg *config.RedisConfig) (*Debug, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, fmt.Errorf("cache is not configured")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("could not connect to cache at %s: %w", cfg.Addr, err)
	}
	return &Debug{rdb: rdb, ctx: ctx}, nil
}

// GetAllKeys returns every key under the service prefix.
func (d *Debug) GetAllKeys() ([]string, error) {
	return d.rdb.Keys(d.ctx, keyPrefix+"*").Result()
}

// GetType returns the Redis type of a key.
func (d *Debug) GetType(key string) (string, error) {
	return d.rdb.Type(d.ctx, key).Result()
}

// Get returns a string key's value.
func (d *Debug) Get(key string) (string, error) {
	return d.rdb.Get(d.ctx, key).Result()
}

// LRange returns a slice of a list key.
func (d *Debug) LRange(key string, start, stop int64) ([]string, error) {
	return d.rdb.LRange(d.ctx, key, start, stop).Result()
}

func (d *Debug) Close() error {
	return d.rdb.Close()
}
