package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sp3dr4/dovelink/internal/domain"
)

// RedisCache stores each record twice, once under its short code and once
// under a digest of its original URL, so both lookup directions hit.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, logger *slog.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		logger: logger,
	}
}

func (c *RedisCache) GetByCode(ctx context.Context, shortCode string) (*domain.URL, error) {
	return c.get(ctx, CodeKey(shortCode))
}

func (c *RedisCache) GetByOriginal(ctx context.Context, originalURL string) (*domain.URL, error) {
	return c.get(ctx, OriginalKey(originalURL))
}

func (c *RedisCache) get(ctx context.Context, key string) (*domain.URL, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// Cache miss is not an error, just return nil
			return nil, nil
		}
		c.logger.Error("Failed to get from cache", "key", key, "error", err)
		return nil, fmt.Errorf("cache get failed: %w", err)
	}

	var url domain.URL
	if err := json.Unmarshal(val, &url); err != nil {
		c.logger.Error("Failed to unmarshal cached value", "key", key, "error", err)
		return nil, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return &url, nil
}

func (c *RedisCache) Set(ctx context.Context, url *domain.URL, ttl time.Duration) error {
	data, err := json.Marshal(url)
	if err != nil {
		c.logger.Error("Failed to marshal URL for cache", "short_code", url.ShortCode, "error", err)
		return fmt.Errorf("failed to marshal URL: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, CodeKey(url.ShortCode), data, ttl)
		pipe.Set(ctx, OriginalKey(url.OriginalURL), data, ttl)
		return nil
	})
	if err != nil {
		c.logger.Error("Failed to set cache", "short_code", url.ShortCode, "error", err)
		return fmt.Errorf("cache set failed: %w", err)
	}

	return nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.logger.Error("Failed to ping Redis", "error", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// CodeKey is the key holding the record for a short code.
func CodeKey(shortCode string) string {
	return fmt.Sprintf("url:code:%s", shortCode)
}

// OriginalKey is the key holding the record for an original URL. The URL is
// hashed to keep keys bounded.
func OriginalKey(originalURL string) string {
	sum := sha256.Sum256([]byte(originalURL))
	return fmt.Sprintf("url:orig:%s", hex.EncodeToString(sum[:]))
}
