package redisadapter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client), server
}

func TestCacheMissReturnsNotFound(t *testing.T) {
	cache, _ := newTestCache(t)

	permissions, ok, err := cache.Get(context.Background(), "t1", "u1", time.Now())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok || permissions != nil {
		t.Fatalf("expected miss, got %v", permissions)
	}
}

func TestCacheSetThenGet(t *testing.T) {
	cache, _ := newTestCache(t)
	want := []string{"org.read", "payslip.read"}

	if err := cache.Set(context.Background(), "t1", "u1", want, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("set: %v", err)
	}

	permissions, ok, err := cache.Get(context.Background(), "t1", "u1", time.Now())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok || len(permissions) != 2 || permissions[0] != "org.read" {
		t.Fatalf("expected cached permissions, got %v (ok=%v)", permissions, ok)
	}
}

func TestCacheEntriesAreTenantAndUserScoped(t *testing.T) {
	cache, _ := newTestCache(t)

	if err := cache.Set(context.Background(), "t1", "u1", []string{"org.read"}, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, ok, _ := cache.Get(context.Background(), "t2", "u1", time.Now()); ok {
		t.Fatal("expected miss for other tenant")
	}
	if _, ok, _ := cache.Get(context.Background(), "t1", "u2", time.Now()); ok {
		t.Fatal("expected miss for other user")
	}
}

func TestCacheEntryExpires(t *testing.T) {
	cache, server := newTestCache(t)

	if err := cache.Set(context.Background(), "t1", "u1", []string{"org.read"}, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("set: %v", err)
	}

	server.FastForward(2 * time.Minute)

	if _, ok, _ := cache.Get(context.Background(), "t1", "u1", time.Now()); ok {
		t.Fatal("expected expired entry to miss")
	}
}

func TestCacheSkipsAlreadyExpiredWrites(t *testing.T) {
	cache, _ := newTestCache(t)

	if err := cache.Set(context.Background(), "t1", "u1", []string{"org.read"}, time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := cache.Get(context.Background(), "t1", "u1", time.Now()); ok {
		t.Fatal("expected no entry for past expiry")
	}
}

func TestCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)

	if err := cache.Set(context.Background(), "t1", "u1", []string{"org.read"}, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := cache.Invalidate(context.Background(), "t1", "u1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, _ := cache.Get(context.Background(), "t1", "u1", time.Now()); ok {
		t.Fatal("expected invalidated entry to miss")
	}
}
