package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	shamePrefix        = "shame"
	shameGenerationKey = "shame:generation"
)

// ShameCache stores rendered hall-of-shame and leaderboard payloads. Entries
// are namespaced by a generation counter, so Invalidate drops every cached
// view at once by bumping the counter. A nil *ShameCache is a valid,
// always-missing cache.
type ShameCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewShameCache(rdb *redis.Client, ttl time.Duration) *ShameCache {
	if rdb == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &ShameCache{rdb: rdb, ttl: ttl}
}

// Key builds a cache key from a view name and its query parameters.
func Key(view string, params ...string) string {
	return view + ":" + strings.Join(params, ":")
}

func (c *ShameCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	full, err := c.fullKey(ctx, key)
	if err != nil {
		return nil, false
	}
	b, err := c.rdb.Get(ctx, full).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("shame cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return b, true
}

func (c *ShameCache) Set(ctx context.Context, key string, payload []byte) {
	if c == nil {
		return
	}
	full, err := c.fullKey(ctx, key)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, full, payload, c.ttl).Err(); err != nil {
		slog.Warn("shame cache set failed", "key", key, "error", err)
	}
}

// Invalidate makes every previously cached view unreachable.
func (c *ShameCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.rdb.Incr(ctx, shameGenerationKey).Err(); err != nil {
		slog.Warn("shame cache invalidate failed", "error", err)
	}
}

func (c *ShameCache) fullKey(ctx context.Context, key string) (string, error) {
	gen, err := c.rdb.Get(ctx, shameGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("%s:%d:%s", shamePrefix, gen, key), nil
}
