package cache

import (
	"context"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/lineup/pkg/errors"
)

// redisClient is the part of *redis.Client the cache uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// RedisCache stores entries in Redis under a key prefix. Connection
// failures are retried with backoff.
type RedisCache struct {
	rdb    redisClient
	prefix string
}

// RedisConfig configures NewRedisCache.
type RedisConfig struct {
	// URL is a redis:// or rediss:// URL.
	URL string
	// Prefix is prepended to every key. Empty means "lineup:".
	Prefix  string
	Timeout time.Duration
}

// NewRedisCache connects to the server at cfg.URL. The connection is
// established lazily on first use.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "redis url")
	}
	if cfg.Timeout > 0 {
		opts.DialTimeout = cfg.Timeout
		opts.ReadTimeout = cfg.Timeout
		opts.WriteTimeout = cfg.Timeout
	}
	return newRedisCache(redis.NewClient(opts), cfg.Prefix), nil
}

func newRedisCache(rdb redisClient, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "lineup:"
	}
	return &RedisCache{rdb: rdb, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
		if err == redis.Nil {
			data = nil
			return nil
		}
		data = b
		return classify(err)
	})
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeNetwork, err, "redis get")
	}
	return data, data != nil, nil
}

// Set stores data. A ttl of 0 never expires.
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := RetryWithBackoff(ctx, func() error {
		return classify(c.rdb.Set(ctx, c.prefix+key, data, ttl).Err())
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "redis set")
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.prefix+key).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "redis del")
	}
	return nil
}

func (c *RedisCache) Close() error { return c.rdb.Close() }

// classify marks network failures as retryable.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(net.Error); ok {
		return Retryable(err)
	}
	return err
}

var _ Cache = (*RedisCache)(nil)
