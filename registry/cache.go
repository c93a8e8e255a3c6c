package registry

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verimed/verimed/observability"
)

// defaultCacheTTL bounds how long a source response is reused.
const defaultCacheTTL = 6 * time.Hour

// CachedSource wraps a Source with a redis read-through cache. Cache errors
// degrade to a direct source call; a cache failure never fails a lookup.
type CachedSource struct {
	inner  Source
	rdb    *redis.Client
	ttl    time.Duration
	logger observability.Logger
}

// CacheOption configures a CachedSource.
type CacheOption func(*CachedSource)

// WithTTL overrides the cache entry lifetime.
func WithTTL(d time.Duration) CacheOption {
	return func(c *CachedSource) { c.ttl = d }
}

// WithCacheLogger sets the cache's logger.
func WithCacheLogger(l observability.Logger) CacheOption {
	return func(c *CachedSource) { c.logger = l }
}

// NewCachedSource wraps inner with a redis cache.
func NewCachedSource(inner Source, rdb *redis.Client, opts ...CacheOption) *CachedSource {
	c := &CachedSource{
		inner:  inner,
		rdb:    rdb,
		ttl:    defaultCacheTTL,
		logger: observability.NopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedSource) Name() string { return c.inner.Name() }

// Search serves cached records when present, otherwise queries the inner
// source and stores its records best-effort.
func (c *CachedSource) Search(ctx context.Context, name string) ([]Record, error) {
	key := cacheKey(c.inner.Name(), name)
	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var records []Record
		if err := json.Unmarshal(data, &records); err == nil {
			return records, nil
		}
		// Corrupt entry; fall through to the source and overwrite.
	}

	records, err := c.inner.Search(ctx, name)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(records); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("registry cache write failed",
				observability.String("source", c.inner.Name()),
				observability.Error("error", err))
		}
	}
	return records, nil
}

func cacheKey(source, name string) string {
	return "registry:" + source + ":" + strings.ToLower(strings.TrimSpace(name))
}
