package memory

import (
	"context"
	"sync"
	"time"
)

// Cache is an in-memory permission cache for tests and single-process wiring.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	permissions []string
	expiresAt   time.Time
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

func cacheKey(tenantID string, userID string) string {
	return tenantID + ":" + userID
}

func (c *Cache) Get(_ context.Context, tenantID string, userID string, now time.Time) ([]string, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[cacheKey(tenantID, userID)]
	c.mu.RUnlock()
	if !ok || !entry.expiresAt.After(now) {
		return nil, false, nil
	}
	return append([]string(nil), entry.permissions...), true, nil
}

func (c *Cache) Set(_ context.Context, tenantID string, userID string, permissions []string, expiresAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(tenantID, userID)] = cacheEntry{
		permissions: append([]string(nil), permissions...),
		expiresAt:   expiresAt,
	}
	return nil
}

func (c *Cache) Invalidate(_ context.Context, tenantID string, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey(tenantID, userID))
	return nil
}
