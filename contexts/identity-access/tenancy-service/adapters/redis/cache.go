package redisadapter

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a redis-backed permission cache. Entries are tenant+user scoped
// and expire via redis TTL; the `now` argument exists only to satisfy the
// port contract shared with the memory adapter.
type Cache struct {
	client *redis.Client
	prefix string
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client, prefix: "paygrid:permcache:"}
}

func (c *Cache) key(tenantID string, userID string) string {
	return c.prefix + tenantID + ":" + userID
}

func (c *Cache) Get(ctx context.Context, tenantID string, userID string, _ time.Time) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, c.key(tenantID, userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var permissions []string
	if err := json.Unmarshal(raw, &permissions); err != nil {
		return nil, false, err
	}
	return permissions, true, nil
}

func (c *Cache) Set(ctx context.Context, tenantID string, userID string, permissions []string, expiresAt time.Time) error {
	raw, err := json.Marshal(permissions)
	if err != nil {
		return err
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return c.client.Set(ctx, c.key(tenantID, userID), raw, ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, tenantID string, userID string) error {
	return c.client.Del(ctx, c.key(tenantID, userID)).Err()
}
