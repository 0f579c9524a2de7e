package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTimeout = 5 * time.Second

// Config points at the Redis instance holding revoked session ids.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Open connects to Redis, pings it and returns a RevocationList on the
// connection. Close the list to release the client.
func Open(ctx context.Context, cfg Config) (*RevocationList, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRevocationList(client), nil
}

// Close releases the client.
func (r *RevocationList) Close() error {
	return r.client.Close()
}
