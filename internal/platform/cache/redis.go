// Package cache wires the shared Redis client. Redis accelerates catalog
// reads but is never a correctness dependency: when it is unreachable the
// client is still returned alongside the ping error so callers can log,
// degrade, and keep serving.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// New creates a Redis client for addr and probes it. A failed probe does
// not discard the client; the connection may recover later and go-redis
// redials transparently.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return client, fmt.Errorf("platform/cache: ping: %w", err)
	}
	return client, nil
}
