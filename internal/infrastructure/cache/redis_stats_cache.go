package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appbilling "github.com/schoolpay/backend/internal/application/billing"
	"github.com/schoolpay/backend/internal/domain/billing"
)

// RedisStatsCache implements StatsCache using Redis
// This is suitable for distributed deployments where multiple instances
// need to share the cached aggregates
type RedisStatsCache struct {
	client *redis.Client
	logger *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisStatsCache creates a new Redis-based stats cache
func NewRedisStatsCache(cfg RedisConfig, logger *zap.Logger) (*RedisStatsCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStatsCache{client: client, logger: logger}, nil
}

// NewRedisStatsCacheWithClient creates a cache with an existing Redis client
// This is useful for testing or when sharing a client across components
func NewRedisStatsCacheWithClient(client *redis.Client, logger *zap.Logger) *RedisStatsCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStatsCache{client: client, logger: logger}
}

// Get returns the cached stats for a key, or false on a miss.
// Redis errors are treated as misses so reporting stays available.
func (c *RedisStatsCache) Get(ctx context.Context, key string) (*billing.FeeStats, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("stats cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var stats billing.FeeStats
	if err := json.Unmarshal(data, &stats); err != nil {
		c.logger.Warn("stats cache entry corrupted", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &stats, true
}

// Set stores stats under a key with a TTL
func (c *RedisStatsCache) Set(ctx context.Context, key string, stats *billing.FeeStats, ttl time.Duration) {
	if stats == nil || ttl <= 0 {
		return
	}

	data, err := json.Marshal(stats)
	if err != nil {
		c.logger.Warn("stats cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.Warn("stats cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateSchool removes every cached stats entry belonging to a school.
// Keys are discovered with SCAN to avoid blocking the server on large keyspaces.
func (c *RedisStatsCache) InvalidateSchool(ctx context.Context, schoolID uuid.UUID) {
	pattern := appbilling.StatsCacheSchoolPrefix(schoolID) + "*"

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("stats cache scan failed", zap.String("pattern", pattern), zap.Error(err))
		return
	}

	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("stats cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

// Close closes the Redis client
func (c *RedisStatsCache) Close() error {
	return c.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (c *RedisStatsCache) GetClient() *redis.Client {
	return c.client
}

// Ensure RedisStatsCache implements StatsCache
var _ appbilling.StatsCache = (*RedisStatsCache)(nil)
