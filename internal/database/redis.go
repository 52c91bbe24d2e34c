package database

import (
	"context"
	"fmt"
	"time"

	"github.com/gogotex/docmanager/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisOptions is the subset of client settings the service configures.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// ConnectRedis creates a client and validates it with PING.
func ConnectRedis(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

// ConnectRedisWithRetry retries ConnectRedis with exponential backoff.
func ConnectRedisWithRetry(ctx context.Context, opts RedisOptions, attempts int) (*redis.Client, error) {
	return retry(ctx, "redis", attempts, time.Second, func() (*redis.Client, error) {
		return ConnectRedis(ctx, opts)
	})
}

func retry[T any](ctx context.Context, name string, attempts int, backoff time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var v T
		v, err = fn()
		if err == nil {
			return v, nil
		}
		logger.Warnf("attempt %d/%d: failed to connect to %s: %v", attempt, attempts, name, err)
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return zero, fmt.Errorf("%s: giving up after %d attempts: %w", name, attempts, err)
}
