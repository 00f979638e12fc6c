// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterKind names an engagement counter.
type CounterKind string

const (
	CountLikes  CounterKind = "likes"
	CountViews  CounterKind = "views"
	CountShares CounterKind = "shares"
)

// DefaultCounterTTL bounds how stale a cached count may get.
const DefaultCounterTTL = 10 * time.Minute

// Counters caches per-post engagement counts under count:<kind>:<postId>.
// A nil *Counters always falls through to the loader.
type Counters struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCounters creates a count cache backed by the given Valkey client.
func NewCounters(client *redis.Client, ttl time.Duration) *Counters {
	if ttl == 0 {
		ttl = DefaultCounterTTL
	}
	return &Counters{client: client, ttl: ttl}
}

// CounterKey returns the Valkey key of one counter.
func CounterKey(kind CounterKind, postID int64) string {
	return fmt.Sprintf("count:%s:%d", kind, postID)
}

// Get returns the cached count, or calls load on a miss and caches its
// result. Cache errors are logged and never returned.
func (c *Counters) Get(ctx context.Context, kind CounterKind, postID int64, load func(context.Context) (int64, error)) (int64, error) {
	if c == nil {
		return load(ctx)
	}
	key := CounterKey(kind, postID)

	n, err := c.client.Get(ctx, key).Int64()
	if err == nil {
		return n, nil
	}
	if err != redis.Nil {
		slog.Warn("counter cache get error", "key", key, "error", err)
	}

	n, err = load(ctx)
	if err != nil {
		return 0, err
	}
	if err := c.client.Set(ctx, key, n, c.ttl).Err(); err != nil {
		slog.Warn("counter cache set error", "key", key, "error", err)
	}
	return n, nil
}

// Invalidate drops the cached count so the next Get reloads it.
func (c *Counters) Invalidate(ctx context.Context, kind CounterKind, postID int64) {
	if c == nil {
		return
	}
	key := CounterKey(kind, postID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		slog.Warn("counter cache invalidate error", "key", key, "error", err)
	}
}

// InvalidatePost drops every counter of a post.
func (c *Counters) InvalidatePost(ctx context.Context, postID int64) {
	for _, kind := range []CounterKind{CountLikes, CountViews, CountShares} {
		c.Invalidate(ctx, kind, postID)
	}
}
