package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/olyamironova/paper-exchange/internal/domain"
	"github.com/olyamironova/paper-exchange/internal/port"
	"github.com/redis/go-redis/v9"
)

var _ port.Cache = (*RedisCache)(nil)

const summaryKey = "market:summary"

// RedisCache publishes the latest market summary for outside readers.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{
		client: rdb,
		ttl:    ttl,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

func (c *RedisCache) SetMarketSummary(ctx context.Context, s *domain.MarketSummary) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("redis: encode summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKey, b, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set summary: %w", err)
	}
	return nil
}

// GetMarketSummary returns nil, nil when nothing has been published or the
// entry expired.
func (c *RedisCache) GetMarketSummary(ctx context.Context) (*domain.MarketSummary, error) {
	b, err := c.client.Get(ctx, summaryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get summary: %w", err)
	}
	var s domain.MarketSummary
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("redis: decode summary: %w", err)
	}
	return &s, nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, summaryKey).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
