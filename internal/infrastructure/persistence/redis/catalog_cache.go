package redis

import (
	"context"
	"time"
)

// CatalogCache caches BoardGameGeek responses between sync runs.
// The XML API is slow and aggressively rate limited, so every fetched
// thing is kept for TTLCatalogCache and reused by subsequent syncs.
type CatalogCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewCatalogCache creates a new CatalogCache.
// A non-positive ttl falls back to TTLCatalogCache.
func NewCatalogCache(cache *Cache, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = TTLCatalogCache
	}
	return &CatalogCache{
		cache: cache,
		ttl:   ttl,
	}
}

// Get retrieves a cached thing by BoardGameGeek id into dest.
// Returns ErrCacheMiss on miss.
func (c *CatalogCache) Get(ctx context.Context, externalID int64, dest interface{}) error {
	return c.cache.Get(ctx, CatalogKey(externalID), dest)
}

// Set stores a fetched thing under its BoardGameGeek id.
func (c *CatalogCache) Set(ctx context.Context, externalID int64, value interface{}) error {
	return c.cache.Set(ctx, CatalogKey(externalID), value, c.ttl)
}

// Delete drops a cached thing, forcing the next sync to refetch it.
func (c *CatalogCache) Delete(ctx context.Context, externalID int64) error {
	return c.cache.Delete(ctx, CatalogKey(externalID))
}

// InvalidateAll clears all cached BoardGameGeek responses.
func (c *CatalogCache) InvalidateAll(ctx context.Context) error {
	return c.cache.DeleteByPattern(ctx, PrefixCatalog+"*")
}
