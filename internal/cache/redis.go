package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/MRuhan17/Movie-Recommender/internal/config"
	"github.com/MRuhan17/Movie-Recommender/internal/logging"
)

var client *redis.Client

// InitRedis connects to Redis. When Addr is empty caching is disabled and
// every helper below becomes a no-op.
func InitRedis(ctx context.Context, cfg config.RedisConfig) error {
	if cfg.Addr == "" {
		logging.Info().Msg("redis disabled, TMDB lookups are not cached")
		return nil
	}
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	client = c
	logging.Info().Str("addr", cfg.Addr).Msg("redis connected")
	return nil
}

// SetClient installs c as the cache backend; nil disables caching.
func SetClient(c *redis.Client) { client = c }

// Enabled reports whether a Redis client is configured.
func Enabled() bool { return client != nil }

// =======================================================
//  JSON helpers
// =======================================================

// GetJSON reads key and decodes it into dest. ok is false on a miss.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}

	val, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores value as JSON under key for ttl.
func SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if client == nil {
		return nil
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Delete removes keys; missing keys are ignored.
func Delete(ctx context.Context, keys ...string) error {
	if client == nil || len(keys) == 0 {
		return nil
	}
	return client.Del(ctx, keys...).Err()
}

// Close releases the client.
func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}
