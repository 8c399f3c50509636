package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tair/lot-reservation/internal/reservation/domain"
	"github.com/tair/lot-reservation/pkg/logger"
)

const defaultTTL = 30 * time.Second

// RedisCache keeps availability summaries in redis. Errors degrade to a cache
// miss; the database stays the source of truth.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache with the given TTL
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, productID, warehouseID uint) (*domain.AvailabilitySummary, bool) {
	key := cacheKey(productID, warehouseID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		logger.Debug(ctx).Str("cache_key", key).Msg("Cache miss")
		return nil, false
	}
	if err != nil {
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Redis get failed")
		return nil, false
	}

	var summary domain.AvailabilitySummary
	if err := json.Unmarshal(data, &summary); err != nil {
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Discarding unreadable cache entry")
		return nil, false
	}

	logger.Debug(ctx).Str("cache_key", key).Msg("Cache hit")
	return &summary, true
}

func (r *RedisCache) Set(ctx context.Context, summary *domain.AvailabilitySummary) {
	key := cacheKey(summary.ProductID, summary.WarehouseID)

	data, err := json.Marshal(summary)
	if err != nil {
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Failed to marshal availability")
		return
	}

	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Redis set failed")
	}
}

func (r *RedisCache) Invalidate(ctx context.Context, productID, warehouseID uint) {
	key := cacheKey(productID, warehouseID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		logger.Warn(ctx).Err(err).Str("cache_key", key).Msg("Redis delete failed")
	}
}

func cacheKey(productID, warehouseID uint) string {
	return fmt.Sprintf("availability:%d:%d", warehouseID, productID)
}
