package price

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kedr891/wishlist-tracker/internal/entity"
	"github.com/kedr891/wishlist-tracker/pkg/redis"
)

const _historyKeyPrefix = "price:history"

// HistoryCache stores an item's observation list under the item version it
// was read for. Get returns redis.ErrCacheMiss when nothing is cached for
// that version.
type HistoryCache interface {
	Get(ctx context.Context, itemID uuid.UUID, version string) ([]entity.PriceObservation, error)
	Set(ctx context.Context, itemID uuid.UUID, version string, history []entity.PriceObservation) error
	Invalidate(ctx context.Context, itemID uuid.UUID) error
}

// HistoryVersion changes whenever a price is recorded for the item.
func HistoryVersion(item *entity.Item) string {
	current := "none"
	if item.CurrentPrice.Valid {
		current = item.CurrentPrice.Decimal.String()
	}
	return strconv.FormatInt(item.UpdatedAt.UnixNano(), 10) + ":" + current
}

type cachedHistory struct {
	Version string                    `json:"version"`
	History []entity.PriceObservation `json:"history"`
}

// RedisHistoryCache - кэш истории цен в Redis, одна запись на позицию
type RedisHistoryCache struct {
	rdb *redis.Redis
	ttl time.Duration
}

func NewRedisHistoryCache(rdb *redis.Redis, ttl time.Duration) *RedisHistoryCache {
	return &RedisHistoryCache{rdb: rdb, ttl: ttl}
}

func (c *RedisHistoryCache) Get(ctx context.Context, itemID uuid.UUID, version string) ([]entity.PriceObservation, error) {
	var entry cachedHistory
	if err := c.rdb.GetJSON(ctx, historyKey(itemID), &entry); err != nil {
		return nil, err
	}
	if entry.Version != version {
		return nil, redis.ErrCacheMiss
	}
	return entry.History, nil
}

func (c *RedisHistoryCache) Set(ctx context.Context, itemID uuid.UUID, version string, history []entity.PriceObservation) error {
	return c.rdb.SetJSON(ctx, historyKey(itemID), cachedHistory{Version: version, History: history}, c.ttl)
}

func (c *RedisHistoryCache) Invalidate(ctx context.Context, itemID uuid.UUID) error {
	return c.rdb.Delete(ctx, historyKey(itemID))
}

func historyKey(itemID uuid.UUID) string {
	return redis.CacheKey(_historyKeyPrefix, itemID.String())
}

// NopHistoryCache is used when Redis is disabled.
type NopHistoryCache struct{}

func (NopHistoryCache) Get(context.Context, uuid.UUID, string) ([]entity.PriceObservation, error) {
	return nil, redis.ErrCacheMiss
}

func (NopHistoryCache) Set(context.Context, uuid.UUID, string, []entity.PriceObservation) error {
	return nil
}

func (NopHistoryCache) Invalidate(context.Context, uuid.UUID) error {
	return nil
}
