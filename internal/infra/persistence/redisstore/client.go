// Package redisstore keeps refresh tokens in Redis with native key expiry.
package redisstore

import (
	"context"
	"log/slog"
	"time"

	"authcore/config"
	"authcore/internal/domain/lifecycle"
	"authcore/internal/errors"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"
)

// NewClient creates a Redis client and ties its lifetime to the fx application.
func NewClient(lc fx.Lifecycle, cfg *config.RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	if cfg == nil || cfg.Addr == "" {
		return nil, errors.New("redis address must be provided")
	}

	opts := &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	client := redis.NewClient(opts)

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to connect to redis")
			}
			logger.Info("Redis refresh token store connected", slog.String("addr", cfg.Addr))

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}
