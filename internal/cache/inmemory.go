package cache

import (
	"context"
	"time"

	"github.com/ihsanfund/donations/internal/config"
	goCache "github.com/patrickmn/go-cache"
)

// DefaultExpiration is used when the config leaves the TTL unset
const DefaultExpiration = 10 * time.Minute

// DefaultCleanupInterval is how often expired items are removed from the cache
const DefaultCleanupInterval = 30 * time.Minute

// InMemoryCache implements the Cache interface using github.com/patrickmn/go-cache
type InMemoryCache struct {
	cache *goCache.Cache
}

// NewInMemoryCache builds the cache used to remember processed webhook events
func NewInMemoryCache(cfg *config.Configuration) Cache {
	ttl := cfg.WebhookDedup.TTL
	if ttl <= 0 {
		ttl = DefaultExpiration
	}
	return NewInMemoryCacheWithTTL(ttl)
}

func NewInMemoryCacheWithTTL(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{
		cache: goCache.New(ttl, DefaultCleanupInterval),
	}
}

func (c *InMemoryCache) Get(_ context.Context, key string) (interface{}, bool) {
	return c.cache.Get(key)
}

func (c *InMemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) {
	if expiration == 0 {
		expiration = goCache.DefaultExpiration
	}
	c.cache.Set(key, value, expiration)
}

func (c *InMemoryCache) Add(_ context.Context, key string, value interface{}, expiration time.Duration) bool {
	if expiration == 0 {
		expiration = goCache.DefaultExpiration
	}
	return c.cache.Add(key, value, expiration) == nil
}

func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.cache.Delete(key)
}

func (c *InMemoryCache) Flush(_ context.Context) {
	c.cache.Flush()
}
