package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/elawdiya/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to REDIS_ADDR. It returns nil when no address is
// configured or the server does not answer a ping, and callers then run
// without a cache.
func NewRedisClient(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "error", err)
		client.Close()
		return nil
	}
	slog.Info("redis connected", "addr", cfg.RedisAddr)
	return client
}
