package cache

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/providers"
	"github.com/holocron-labs/swapi-explorer/backend/internal/infrastructure/observability"
)

// FailsafeCache wraps a CacheProvider so that callers only ever see cache
// semantics, never cache errors: a failed Get or Exists is a miss, a failed
// Set or Delete is a no-op. A nil inner provider behaves as an always-miss
// cache, which keeps the service working (slower) when Redis is unavailable.
type FailsafeCache struct {
	inner   providers.CacheProvider
	metrics *observability.Metrics
}

// NewFailsafeCache creates the degrade-on-failure cache wrapper
func NewFailsafeCache(inner providers.CacheProvider, metrics *observability.Metrics) *FailsafeCache {
	return &FailsafeCache{inner: inner, metrics: metrics}
}

// Get returns the cached value and true on a hit, nil and false otherwise
func (c *FailsafeCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c.inner == nil {
		observability.RecordCacheMiss(ctx, c.metrics, key)
		return nil, false
	}

	data, err := c.inner.Get(ctx, key)
	if err != nil {
		log.Debug().Str("key", key).Err(err).Msg("Cache get failed, treating as miss")
		observability.RecordCacheMiss(ctx, c.metrics, key)
		return nil, false
	}

	observability.RecordCacheHit(ctx, c.metrics, key)
	return data, true
}

// Set stores a value; failures are logged and swallowed
func (c *FailsafeCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) {
	if c.inner == nil {
		return
	}
	if err := c.inner.Set(ctx, key, value, ttlSeconds); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("Cache set failed, skipping")
	}
}

// Delete removes a key; failures are logged and swallowed
func (c *FailsafeCache) Delete(ctx context.Context, key string) {
	if c.inner == nil {
		return
	}
	if err := c.inner.Delete(ctx, key); err != nil {
		log.Warn().Str("key", key).Err(err).Msg("Cache delete failed, skipping")
	}
}

// Exists reports whether the key exists; any failure reads as false
func (c *FailsafeCache) Exists(ctx context.Context, key string) bool {
	if c.inner == nil {
		return false
	}
	exists, err := c.inner.Exists(ctx, key)
	if err != nil {
		log.Debug().Str("key", key).Err(err).Msg("Cache exists failed, treating as absent")
		return false
	}
	return exists
}
