// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// window holds the request times of one client inside the current window.
type window struct {
	mu    sync.Mutex
	times []time.Time
}

// RateLimiter limits requests per client IP. With a Valkey client the
// count is shared by every instance (fixed window); without one a local
// sliding window is used.
type RateLimiter struct {
	limit  int
	window time.Duration
	valkey *redis.Client

	mu      sync.Mutex
	clients map[string]*window
	stopCh  chan struct{}
}

// NewRateLimiter allows limit requests per window. client may be nil.
// A background goroutine drops idle local entries until Stop is called.
func NewRateLimiter(limit int, period time.Duration, client *redis.Client) *RateLimiter {
	rl := &RateLimiter{
		limit:   limit,
		window:  period,
		valkey:  client,
		clients: make(map[string]*window),
		stopCh:  make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				rl.cleanup()
			case <-rl.stopCh:
				return
			}
		}
	}()

	return rl
}

// Stop terminates the background cleanup goroutine.
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// allow reports whether key may make another request. Valkey failures
// fall back to the local window.
func (rl *RateLimiter) allow(ctx context.Context, key string) bool {
	if rl.valkey != nil {
		ok, err := rl.allowShared(ctx, key)
		if err == nil {
			return ok
		}
		slog.Warn("rate limit store unavailable, using local window", "error", err)
	}
	return rl.allowLocal(key)
}

func (rl *RateLimiter) allowShared(ctx context.Context, key string) (bool, error) {
	bucket := time.Now().UnixNano() / int64(rl.window)
	k := "ratelimit:" + key + ":" + strconv.FormatInt(bucket, 10)

	pipe := rl.valkey.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(rl.limit), nil
}

func (rl *RateLimiter) allowLocal(key string) bool {
	rl.mu.Lock()
	entry, ok := rl.clients[key]
	if !ok {
		entry = &window{}
		rl.clients[key] = entry
	}
	rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	kept := entry.times[:0]
	for _, ts := range entry.times {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	entry.times = kept
	if len(entry.times) >= rl.limit {
		return false
	}
	entry.times = append(entry.times, now)
	return true
}

// cleanup removes local entries with no request inside the window.
func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, entry := range rl.clients {
		entry.mu.Lock()
		idle := len(entry.times) == 0 || !entry.times[len(entry.times)-1].After(cutoff)
		entry.mu.Unlock()
		if idle {
			delete(rl.clients, key)
		}
	}
}

// Middleware rejects clients over the limit with a JSON 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(r.Context(), ClientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientIP returns the caller's address, preferring the leftmost
// X-Forwarded-For entry, then X-Real-IP, then the connection address.
// Header values that do not parse as an IP are ignored. The result is
// empty when no candidate parses.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := parseIP(first); ip != "" {
			return ip
		}
	}
	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return parseIP(host)
}

func parseIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}
