package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "lol-blacklist:puuid:"

// RedisCache is a PUUIDCache backed by Redis. Keys never expire.
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(ctx context.Context, redisURL string) (*RedisCache, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisCache{rdb: rdb}, nil
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}

func (c *RedisCache) GetPUUID(ctx context.Context, key string) (string, bool, error) {
	puuid, err := c.rdb.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get puuid: %w", err)
	}
	return puuid, true, nil
}

func (c *RedisCache) PutPUUID(ctx context.Context, key, puuid string) error {
	if err := c.rdb.Set(ctx, redisKeyPrefix+key, puuid, 0).Err(); err != nil {
		return fmt.Errorf("redis set puuid: %w", err)
	}
	return nil
}

func (c *RedisCache) DeletePUUID(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del puuid: %w", err)
	}
	return nil
}
