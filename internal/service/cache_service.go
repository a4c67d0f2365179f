package service

import (
	"context"
	"encoding/json"
	"time"

	"bracket-bff/pkg/redis"
	"go.uber.org/zap"
)

// CacheService provides cache-aside reads in front of the ranking provider.
// A nil Redis client disables caching.
type CacheService struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *CacheService {
	if ttl <= 0 {
		ttl = redis.TTLRank
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
	}
}

// Enabled reports whether a Redis client is configured
func (c *CacheService) Enabled() bool {
	return c != nil && c.redis != nil
}

// RankKey is the cache key for a summoner's league entries
func (c *CacheService) RankKey(region, username string) string {
	if !c.Enabled() {
		return ""
	}
	return c.redis.KeyBuilder.KeyRank(region, username)
}

// LeagueKey is the cache key for a league document
func (c *CacheService) LeagueKey(region, leagueID string) string {
	if !c.Enabled() {
		return ""
	}
	return c.redis.KeyBuilder.KeyLeague(region, leagueID)
}

// GetWithCache returns the cached value for key, or calls load and caches its result.
// Cache errors and corrupt entries fall back to load.
func GetWithCache[T any](ctx context.Context, c *CacheService, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if !c.Enabled() {
		return load(ctx)
	}

	cachedData, err := c.redis.Get(ctx, key)
	if err == nil && cachedData != "" {
		var value T
		if unmarshalErr := json.Unmarshal([]byte(cachedData), &value); unmarshalErr == nil {
			c.logger.Debug("Cache hit", zap.String("key", key))
			return value, nil
		} else {
			c.logger.Warn("Cache entry corrupted, falling back to provider",
				zap.String("key", key),
				zap.Error(unmarshalErr))
		}
	} else if err != nil && !redis.IsNil(err) {
		c.logger.Warn("Cache error, falling back to provider",
			zap.String("key", key),
			zap.Error(err))
	}

	c.logger.Debug("Cache miss", zap.String("key", key))
	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("Failed to marshal value for caching", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	go c.setAsync(key, data)

	return value, nil
}

// Health performs a health check on the cache system
func (c *CacheService) Health(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}

	start := time.Now()
	err := c.redis.Health(ctx)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Cache health check failed",
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Cache health check passed", zap.Duration("duration", duration))
	return nil
}

// setAsync stores a value without holding up the caller
func (c *CacheService) setAsync(key string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.redis.Set(ctx, key, string(data), c.ttl); err != nil {
		c.logger.Error("Failed to cache value",
			zap.String("key", key),
			zap.Error(err))
	} else {
		c.logger.Debug("Value cached successfully", zap.String("key", key))
	}
}
