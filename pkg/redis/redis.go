// Package redis manages the Redis client used for reset tokens and
// idempotency records.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/venuebook/venuebook/pkg/config"
	"github.com/venuebook/venuebook/pkg/logger"
)

const (
	connectRetries    = 5
	connectRetryDelay = 2 * time.Second
)

// Connect creates a Redis client and verifies connectivity, retrying so the
// app survives a Redis that is still starting up.
func Connect(ctx context.Context, cfg *config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	var err error
	for attempt := 1; attempt <= connectRetries; attempt++ {
		if err = client.Ping(ctx).Err(); err == nil {
			break
		}

		if attempt == connectRetries {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis after %d attempts: %w", connectRetries, err)
		}

		logger.Get().Warn("redis connection failed, retrying",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(connectRetryDelay):
		}
	}

	logger.Get().Info("connected to redis", zap.String("addr", cfg.Addr()))
	return client, nil
}

// HealthCheck verifies Redis is reachable
func HealthCheck(ctx context.Context, client *goredis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
