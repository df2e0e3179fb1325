package cache

import (
	"context"
	"testing"
	"time"

	"github.com/ihsanfund/donations/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheWithTTL(time.Minute)

	key := GenerateKey(PrefixStripeEvent, "evt_1")
	assert.Equal(t, "webhook:stripe:v1:evt_1", key)

	_, found := c.Get(ctx, key)
	assert.False(t, found)

	c.Set(ctx, key, true, 0)
	v, found := c.Get(ctx, key)
	assert.True(t, found)
	assert.Equal(t, true, v)

	assert.False(t, c.Add(ctx, key, false, 0), "add must not overwrite")
	assert.True(t, c.Add(ctx, GenerateKey(PrefixStripeEvent, "evt_2"), true, 0))

	c.Delete(ctx, key)
	_, found = c.Get(ctx, key)
	assert.False(t, found)

	c.Flush(ctx)
	_, found = c.Get(ctx, GenerateKey(PrefixStripeEvent, "evt_2"))
	assert.False(t, found)
}

func TestInMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCacheWithTTL(time.Minute)

	c.Set(ctx, "short", 1, 20*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	_, found := c.Get(ctx, "short")
	assert.False(t, found)
}

func TestNewInMemoryCacheDefaults(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.WebhookDedup.TTL = 0

	c := NewInMemoryCache(cfg)
	c.Set(context.Background(), "k", "v", 0)
	v, found := c.Get(context.Background(), "k")
	assert.True(t, found)
	assert.Equal(t, "v", v)
}

func TestGenerateKey(t *testing.T) {
	assert.Equal(t, "p:a:1", GenerateKey("p:", "a", 1))
	assert.Equal(t, "p:", GenerateKey("p:"))
}
