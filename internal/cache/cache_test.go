// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"resp:*", "count:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestValkeyOptionsAddr(t *testing.T) {
	tests := []struct {
		host, port, want string
	}{
		{"localhost", "6379", "localhost:6379"},
		{"10.0.0.5", "6380", "10.0.0.5:6380"},
		{"::1", "6379", "[::1]:6379"},
	}
	for _, tt := range tests {
		if got := (ValkeyOptions{Host: tt.host, Port: tt.port}).Addr(); got != tt.want {
			t.Errorf("Addr(%q, %q) = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(context.Background(), ValkeyOptions{Host: host, Port: port})
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

type payload struct {
	IDs  []int64 `json:"ids"`
	Name string  `json:"name"`
}

func TestResponseCacheSetAndGet(t *testing.T) {
	client := testValkeyClient(t)
	rc := NewResponseCache(client, time.Minute)
	ctx := context.Background()

	var got payload
	if rc.Get(ctx, "test-key", &got) {
		t.Fatal("expected cache miss")
	}

	want := payload{IDs: []int64{3, 2, 1}, Name: "pinned"}
	rc.Set(ctx, "test-key", want)

	if !rc.Get(ctx, "test-key", &got) {
		t.Fatal("expected cache hit")
	}
	if got.Name != want.Name || len(got.IDs) != 3 || got.IDs[0] != 3 {
		t.Errorf("payload mismatch: got %+v, want %+v", got, want)
	}
}

func TestResponseCacheInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	rc := NewResponseCache(client, time.Minute)
	ctx := context.Background()

	rc.Set(ctx, PinnedKey, payload{Name: "x"})
	rc.Invalidate(ctx, PinnedKey)

	var got payload
	if rc.Get(ctx, PinnedKey, &got) {
		t.Error("expected cache miss after invalidation")
	}
}

func TestResponseCacheInvalidateAll(t *testing.T) {
	client := testValkeyClient(t)
	rc := NewResponseCache(client, time.Minute)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		rc.Set(ctx, key, payload{Name: key})
	}
	rc.InvalidateAll(ctx)

	for _, key := range []string{"a", "b", "c"} {
		var got payload
		if rc.Get(ctx, key, &got) {
			t.Errorf("expected miss for %q after InvalidateAll", key)
		}
	}
}

func TestNewResponseCacheDefaultTTL(t *testing.T) {
	rc := NewResponseCache(nil, 0)
	if rc.ttl != DefaultResponseTTL {
		t.Errorf("expected DefaultResponseTTL (%v), got %v", DefaultResponseTTL, rc.ttl)
	}
}

func TestNilCachesAreDisabled(t *testing.T) {
	ctx := context.Background()

	var rc *ResponseCache
	rc.Set(ctx, "k", payload{})
	rc.Invalidate(ctx, "k")
	rc.InvalidateAll(ctx)
	var got payload
	if rc.Get(ctx, "k", &got) {
		t.Error("nil response cache reported a hit")
	}

	var c *Counters
	calls := 0
	for i := 0; i < 2; i++ {
		n, err := c.Get(ctx, CountLikes, 1, func(context.Context) (int64, error) {
			calls++
			return 7, nil
		})
		if err != nil || n != 7 {
			t.Fatalf("Get: got (%d, %v), want (7, nil)", n, err)
		}
	}
	if calls != 2 {
		t.Errorf("loader calls: got %d, want 2", calls)
	}
	c.InvalidatePost(ctx, 1)
}

func TestCounterKey(t *testing.T) {
	tests := []struct {
		kind CounterKind
		id   int64
		want string
	}{
		{CountLikes, 1, "count:likes:1"},
		{CountViews, 42, "count:views:42"},
		{CountShares, 7, "count:shares:7"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := CounterKey(tt.kind, tt.id); got != tt.want {
				t.Errorf("CounterKey: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCountersCacheLoaderResult(t *testing.T) {
	client := testValkeyClient(t)
	c := NewCounters(client, time.Minute)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) (int64, error) {
		calls++
		return 5, nil
	}

	for i := 0; i < 3; i++ {
		n, err := c.Get(ctx, CountViews, 99, load)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if n != 5 {
			t.Errorf("count: got %d, want 5", n)
		}
	}
	if calls != 1 {
		t.Errorf("loader calls: got %d, want 1", calls)
	}

	c.Invalidate(ctx, CountViews, 99)
	if _, err := c.Get(ctx, CountViews, 99, load); err != nil {
		t.Fatalf("Get after invalidate: %v", err)
	}
	if calls != 2 {
		t.Errorf("loader calls after invalidate: got %d, want 2", calls)
	}
}

func TestCountersLoaderError(t *testing.T) {
	client := testValkeyClient(t)
	c := NewCounters(client, time.Minute)
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := c.Get(ctx, CountShares, 100, func(context.Context) (int64, error) {
		return 0, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Get error: got %v, want boom", err)
	}
	if n, _ := client.Exists(ctx, CounterKey(CountShares, 100)).Result(); n != 0 {
		t.Error("failed load must not be cached")
	}
}
