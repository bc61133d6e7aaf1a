package permissions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const catalogVersionKey = "catalog:version"

// Cache wraps Redis based caching of the grouped catalog view with
// versioning controls. A nil Cache (or nil client) degrades to pass-through
// loads so redis is never a correctness dependency.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, catalogVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, catalogVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Bump invalidates all cached views by incrementing the catalog version.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, catalogVersionKey).Err()
}

// FetchGrouped loads the grouped view from cache, populating it via the
// loader on miss. Redis failures fall through to the loader.
func (c *Cache) FetchGrouped(ctx context.Context, loader func(context.Context) (map[string][]ModuleAction, error)) (map[string][]ModuleAction, error) {
	if c == nil || c.client == nil {
		return loader(ctx)
	}
	ver, err := c.version(ctx)
	if err != nil {
		return loader(ctx)
	}
	key := fmt.Sprintf("catalog:grouped:%d", ver)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached map[string][]ModuleAction
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	grouped, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(grouped); err == nil {
		_ = c.client.Set(ctx, key, encoded, c.ttl).Err()
	}
	return grouped, nil
}
