package bootstrap

import (
	"fmt"

	"github.com/kedr891/wishlist-tracker/config"
	"github.com/kedr891/wishlist-tracker/internal/price"
	"github.com/kedr891/wishlist-tracker/pkg/logger"
	"github.com/kedr891/wishlist-tracker/pkg/redis"
)

// InitHistoryCache returns a Redis-backed price history cache, or a no-op one
// when Redis is disabled.
func InitHistoryCache(cfg *config.Config, log *logger.Logger) (price.HistoryCache, func(), error) {
	if !cfg.Redis.Enabled {
		return price.NopHistoryCache{}, func() {}, nil
	}

	log.Info("Connecting to Redis...", "addr", cfg.Redis.Addr)
	rdb, err := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
		redis.ConnAttempts(cfg.Redis.ConnAttempts),
		redis.ConnTimeout(cfg.Redis.ConnTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis.New: %w", err)
	}

	closeFn := func() {
		if err := rdb.Close(); err != nil {
			log.Warn("Failed to close Redis", "error", err)
		}
	}

	return price.NewRedisHistoryCache(rdb, cfg.Redis.HistoryTTL), closeFn, nil
}
