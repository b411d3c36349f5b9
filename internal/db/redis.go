package db

import (
	"context"
	"time"

	"backend-yatube/internal/config"
	"backend-yatube/internal/logging"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns nil when redis is not configured or not reachable;
// the page cache and the stream fan-out both treat a nil client as "disabled".
func ConnectRedis(cfg config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logging.Log.WithError(err).WithField("addr", cfg.RedisAddr).Warn("redis unreachable, running without it")
		_ = client.Close()
		return nil
	}
	return client
}
