// Package cache stores pipeline results between CLI runs.
//
// Backends implement [Cache]: [FileCache] under the user cache directory,
// [RedisCache] for sharing results between machines, and [NullCache] when
// caching is disabled. Keys are derived by a [Keyer] from content hashes of
// the inputs, so a changed data file or ranking definition never hits a
// stale entry.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/matzehuels/lineup/pkg/observability"
)

// Entry lifetimes.
const (
	TTLRanking = 24 * time.Hour
	TTLStats   = 24 * time.Hour
)

// Cache is a byte store with per-entry expiry. A miss is not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}

// instrumented reports hits, misses and writes to the registered
// observability hooks.
type instrumented struct {
	Cache
}

// Instrument wraps c so that its traffic reaches observability.Cache().
func Instrument(c Cache) Cache {
	if c == nil {
		c = NewNullCache()
	}
	return instrumented{Cache: c}
}

func (c instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := c.Cache.Get(ctx, key)
	if err == nil {
		if hit {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, hit, err
}

func (c instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}

// keyType is the leading segment of key, such as "ranking" or "stats".
func keyType(key string) string {
	t, _, _ := strings.Cut(key, ":")
	return t
}
