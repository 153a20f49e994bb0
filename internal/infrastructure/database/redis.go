package database

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewRedis constructs the shared Redis client backing the rate limiter.
func NewRedis(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// Ping verifies the connection at startup.
func Ping(ctx context.Context, client *redis.Client) error {
	return client.Ping(ctx).Err()
}
