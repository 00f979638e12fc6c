// Package cache provides the Valkey (Redis-compatible) client, a JSON
// response cache for hot read endpoints and the engagement count cache.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyOptions describes how to reach the Valkey server.
type ValkeyOptions struct {
	Host     string
	Port     string
	Password string
	DB       int
	PoolSize int // 0 keeps the client default
}

// Addr returns host:port.
func (o ValkeyOptions) Addr() string {
	return net.JoinHostPort(o.Host, o.Port)
}

// ConnectValkey creates a Valkey client and verifies the connection with
// a ping. The client is closed when the ping fails.
func ConnectValkey(ctx context.Context, o ValkeyOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         o.Addr(),
		Password:     o.Password,
		DB:           o.DB,
		PoolSize:     o.PoolSize,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", o.Addr(), err)
	}

	slog.Info("valkey connected", "addr", o.Addr(), "db", o.DB)
	return client, nil
}
