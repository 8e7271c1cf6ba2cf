package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/onepos/storefront/internal/ports"
)

// CatalogCache stores serialized catalog responses with a per-entry TTL.
// Redis expiry is the only eviction mechanism.
type CatalogCache struct {
	client redis.UniversalClient
	prefix string
}

// NewCatalogCache creates a Redis-backed catalog cache.
func NewCatalogCache(client redis.UniversalClient) *CatalogCache {
	return &CatalogCache{
		client: client,
		prefix: "catalog:",
	}
}

// NewCatalogCacheWithPrefix creates a catalog cache with a custom key prefix.
func NewCatalogCacheWithPrefix(client redis.UniversalClient, prefix string) *CatalogCache {
	return &CatalogCache{
		client: client,
		prefix: prefix,
	}
}

func (c *CatalogCache) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ports.ErrCacheMiss
	}

	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

func (c *CatalogCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("cache key cannot be empty")
	}
	if ttl <= 0 {
		return errors.New("cache entry needs a positive ttl")
	}
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}
