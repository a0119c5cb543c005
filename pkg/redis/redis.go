package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/nearbuy/nearbuy-backend/config"
	"github.com/nearbuy/nearbuy-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

const regionGateKeyPrefix = "region_gate:"

// SetRegionGate caches a region gate flag for the given TTL.
func SetRegionGate(ctx context.Context, region string, enabled bool, ttl time.Duration) error {
	value := "0"
	if enabled {
		value = "1"
	}

	key := regionGateKeyPrefix + region
	if err := client.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.Error("Failed to cache region gate", err, map[string]interface{}{
			"region": region,
		})
		return err
	}
	return nil
}

// GetRegionGate reads a cached region gate flag. The second return value is
// false on a cache miss.
func GetRegionGate(ctx context.Context, region string) (enabled bool, found bool, err error) {
	key := regionGateKeyPrefix + region
	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		logger.Error("Failed to read cached region gate", err, map[string]interface{}{
			"region": region,
		})
		return false, false, err
	}
	return val == "1", true, nil
}

// InvalidateRegionGate drops the cached flag after a gate write.
func InvalidateRegionGate(ctx context.Context, region string) error {
	key := regionGateKeyPrefix + region
	if err := client.Del(ctx, key).Err(); err != nil {
		logger.Error("Failed to invalidate cached region gate", err, map[string]interface{}{
			"region": region,
		})
		return err
	}
	return nil
}
