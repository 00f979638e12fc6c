// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// response.go caches JSON-encoded API payloads in Valkey. The pinned post
// list is read on every front page load and changes only on post writes,
// so it is cached here and invalidated by the post service.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	// responseKeyPrefix is the Valkey key prefix for cached responses.
	responseKeyPrefix = "resp:"

	// DefaultResponseTTL is how long a cached response stays valid.
	DefaultResponseTTL = 5 * time.Minute

	// PinnedKey is the cache key of the pinned post list.
	PinnedKey = "posts:pinned"
)

// ResponseCache stores JSON payloads in Valkey. A nil *ResponseCache is a
// disabled cache: every Get misses and every write is a no-op.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a response cache backed by the given Valkey client.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl == 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// Get decodes the cached payload for key into dst. Returns false on a
// miss or when the cached bytes no longer decode.
func (rc *ResponseCache) Get(ctx context.Context, key string, dst any) bool {
	if rc == nil {
		return false
	}
	val, err := rc.client.Get(ctx, responseKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(val, dst); err != nil {
		slog.Warn("response cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("response cache hit", "key", key)
	return true
}

// Set encodes v and stores it under key with the configured TTL.
func (rc *ResponseCache) Set(ctx context.Context, key string, v any) {
	if rc == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		slog.Warn("response cache encode error", "key", key, "error", err)
		return
	}
	if err := rc.client.Set(ctx, responseKeyPrefix+key, data, rc.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single cached response.
func (rc *ResponseCache) Invalidate(ctx context.Context, key string) {
	if rc == nil {
		return
	}
	if err := rc.client.Del(ctx, responseKeyPrefix+key).Err(); err != nil {
		slog.Warn("response cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("response cache invalidated", "key", key)
}

// InvalidateAll removes every cached response by scanning for the prefix.
func (rc *ResponseCache) InvalidateAll(ctx context.Context) {
	if rc == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, responseKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("response cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("response cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("response cache cleared", "deleted", deleted)
	}
}
