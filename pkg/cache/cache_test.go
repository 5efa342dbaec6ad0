package cache

import (
	"context"
	stderrors "errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %v, %v, %v; want nil, false, nil", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("len(Hash) = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := k.RankingKey("data", "cfg", RankingKeyOpts{Sort: "score"})
	assert.True(t, strings.HasPrefix(base, "ranking:"))
	assert.Equal(t, base, k.RankingKey("data", "cfg", RankingKeyOpts{Sort: "score"}))

	for name, other := range map[string]string{
		"data":      k.RankingKey("data2", "cfg", RankingKeyOpts{Sort: "score"}),
		"config":    k.RankingKey("data", "cfg2", RankingKeyOpts{Sort: "score"}),
		"sort":      k.RankingKey("data", "cfg", RankingKeyOpts{Sort: "name"}),
		"direction": k.RankingKey("data", "cfg", RankingKeyOpts{Sort: "score", Direction: "asc"}),
		"limit":     k.RankingKey("data", "cfg", RankingKeyOpts{Sort: "score", Limit: 5}),
	} {
		assert.NotEqual(t, base, other, "changing %s must change the key", name)
	}

	s := k.StatsKey("data", "cfg", 0xff, 10)
	assert.True(t, strings.HasPrefix(s, "stats:ff:"), s)
	assert.NotEqual(t, s, k.StatsKey("data", "cfg", 0xff, 20))
	assert.NotEqual(t, s, k.StatsKey("data", "cfg", 0xfe, 10))
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	k := NewScopedKeyer(nil, "user:42:")

	opts := RankingKeyOpts{Sort: "score"}
	assert.Equal(t, "user:42:"+inner.RankingKey("d", "c", opts), k.RankingKey("d", "c", opts))
	assert.Equal(t, "user:42:"+inner.StatsKey("d", "c", 1, 10), k.StatsKey("d", "c", 1, 10))
}

// =============================================================================
// FileCache
// =============================================================================

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "nested", "cache"))
	require.NoError(t, err)
	defer c.Close()

	_, hit, err := c.Get(ctx, "ranking:a")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "ranking:a", []byte("rows"), time.Hour))
	data, hit, err := c.Get(ctx, "ranking:a")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "rows", string(data))

	require.NoError(t, c.Delete(ctx, "ranking:a"))
	_, hit, _ = c.Get(ctx, "ranking:a")
	assert.False(t, hit)
	assert.NoError(t, c.Delete(ctx, "ranking:a"), "deleting a missing entry is not an error")
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Nanosecond))
	require.NoError(t, c.Set(ctx, "forever", []byte("y"), 0))
	time.Sleep(5 * time.Millisecond)

	_, hit, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, hit, "expired entry should miss")
	_, err = os.Stat(c.path("short"))
	assert.True(t, os.IsNotExist(err), "expired entry should be removed")

	_, hit, _ = c.Get(ctx, "forever")
	assert.True(t, hit)
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "k", []byte("x"), 0))
	require.NoError(t, os.WriteFile(c.path("k"), []byte("{not json"), 0o644))

	_, hit, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	require.NoError(t, err)

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, c.Set(ctx, k, []byte(k), 0))
	}
	n, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, hit, _ := c.Get(ctx, "a")
	assert.False(t, hit)
}

func TestNewFileCacheInvalidPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewFileCache(filepath.Join(file, "sub"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPath))
}

// =============================================================================
// RedisCache
// =============================================================================

// fakeRedis stores values in memory. The first failures calls of any
// command return a network error.
type fakeRedis struct {
	mu       sync.Mutex
	data     map[string]string
	ttls     map[string]time.Duration
	failures int
	calls    int
	closed   bool
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

var errRefused = &net.OpError{Op: "dial", Net: "tcp", Err: stderrors.New("connection refused")}

func (f *fakeRedis) fail() error {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errRefused
	}
	return nil
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return redis.NewStringResult("", err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail(); err != nil {
		return redis.NewStatusResult("", err)
	}
	f.data[key] = string(value.([]byte))
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Close() error {
	f.closed = true
	return nil
}

func fastRetries(t *testing.T) {
	t.Helper()
	old := retryDelay
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = old })
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	f := newFakeRedis()
	c := newRedisCache(f, "")

	_, hit, err := c.Get(ctx, "ranking:a")
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "ranking:a", []byte("rows"), TTLRanking))
	assert.Equal(t, "rows", f.data["lineup:ranking:a"])
	assert.Equal(t, TTLRanking, f.ttls["lineup:ranking:a"])

	data, hit, err := c.Get(ctx, "ranking:a")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("rows"), data)

	require.NoError(t, c.Delete(ctx, "ranking:a"))
	assert.Empty(t, f.data)

	require.NoError(t, c.Close())
	assert.True(t, f.closed)
}

func TestRedisCacheRetries(t *testing.T) {
	fastRetries(t)
	ctx := context.Background()

	f := newFakeRedis()
	f.failures = 2
	c := newRedisCache(f, "p:")
	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	assert.Equal(t, 3, f.calls)

	f.failures = 5
	_, _, err := c.Get(ctx, "k")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNetwork))
}

func TestNewRedisCacheInvalidURL(t *testing.T) {
	_, err := NewRedisCache(RedisConfig{URL: "http://localhost"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))

	c, err := NewRedisCache(RedisConfig{URL: "redis://localhost:6379/0", Prefix: "t:", Timeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "t:", c.prefix)
	require.NoError(t, c.Close())
}

// =============================================================================
// Retry
// =============================================================================

func TestRetryWithBackoff(t *testing.T) {
	fastRetries(t)
	ctx := context.Background()

	permanent := stderrors.New("bad request")
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return permanent
	})
	assert.Same(t, permanent, err)
	assert.Equal(t, 1, calls, "permanent errors are not retried")

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(errRefused)
	})
	assert.True(t, IsRetryable(err))
	assert.Equal(t, retryAttempts, calls)

	assert.Nil(t, Retryable(nil))
}

func TestRetryWithBackoffCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, func() error { return Retryable(errRefused) })
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// Instrument
// =============================================================================

type cacheRecorder struct {
	observability.NoopCacheHooks
	hits, misses, sets []string
}

func (r *cacheRecorder) OnCacheHit(_ context.Context, k string) {
	r.hits = append(r.hits, k)
}

func (r *cacheRecorder) OnCacheMiss(_ context.Context, k string) {
	r.misses = append(r.misses, k)
}

func (r *cacheRecorder) OnCacheSet(_ context.Context, k string, _ int) {
	r.sets = append(r.sets, k)
}

func TestInstrument(t *testing.T) {
	rec := &cacheRecorder{}
	observability.SetCacheHooks(rec)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	fc, err := NewFileCache(t.TempDir())
	require.NoError(t, err)
	c := Instrument(fc)

	_, _, _ = c.Get(ctx, "ranking:abc")
	require.NoError(t, c.Set(ctx, "stats:ff:def", []byte("x"), 0))
	_, _, _ = c.Get(ctx, "stats:ff:def")

	assert.Equal(t, []string{"ranking"}, rec.misses)
	assert.Equal(t, []string{"stats"}, rec.sets)
	assert.Equal(t, []string{"stats"}, rec.hits)
}
