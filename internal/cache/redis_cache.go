package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"storeledger/backend/internal/domain"
)

type RedisStatisticsCache struct {
	client redis.UniversalClient
}

func NewRedisStatisticsCache(addr string, password string, db int) *RedisStatisticsCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisStatisticsCache{client: client}
}

// NewRedisStatisticsCacheFromClient shares a client with other redis users
// such as the edit locker.
func NewRedisStatisticsCacheFromClient(client redis.UniversalClient) *RedisStatisticsCache {
	return &RedisStatisticsCache{client: client}
}

func (c *RedisStatisticsCache) Client() redis.UniversalClient {
	return c.client
}

func (c *RedisStatisticsCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisStatisticsCache) Close() error {
	return c.client.Close()
}

func (c *RedisStatisticsCache) Get(ctx context.Context, key string) (*domain.Statistics, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var stats domain.Statistics
	if err := json.Unmarshal([]byte(val), &stats); err != nil {
		return nil, false, err
	}
	return &stats, true, nil
}

func (c *RedisStatisticsCache) Set(ctx context.Context, key string, value *domain.Statistics, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

func (c *RedisStatisticsCache) Generation(ctx context.Context, storeID int64) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(storeID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisStatisticsCache) Bump(ctx context.Context, storeID int64) error {
	return c.client.Incr(ctx, generationKey(storeID)).Err()
}

func generationKey(storeID int64) string {
	return fmt.Sprintf("storeledger:stats:gen:%d", storeID)
}
