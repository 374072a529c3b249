package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	redisKeyPrefix = "countryrates:"
	redisTagPrefix = "countryrates:tag:"
	redisVerPrefix = "countryrates:ver:"
)

// RedisCache shares query results between instances. Tag membership lives in redis sets.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisCache(addr, password string, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &RedisCache{client: rdb, ttl: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logrus.WithError(err).WithField("key", key).Warn("redis cache get failed")
		}
		return nil, false
	}
	return b, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, tags ...string) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKeyPrefix+key, value, c.ttl)
		for _, tag := range tags {
			pipe.SAdd(ctx, redisTagPrefix+tag, key)
		}
		return nil
	})
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("redis cache set failed")
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if err := c.client.Incr(ctx, redisVerPrefix+k).Err(); err != nil {
			return fmt.Errorf("failed to bump cache generation %s: %w", k, err)
		}

		members, err := c.client.SMembers(ctx, redisTagPrefix+k).Result()
		if err != nil {
			return fmt.Errorf("failed to read cache tag %s: %w", k, err)
		}

		toDelete := make([]string, 0, len(members)+2)
		for _, m := range members {
			toDelete = append(toDelete, redisKeyPrefix+m)
		}
		toDelete = append(toDelete, redisKeyPrefix+k, redisTagPrefix+k)

		if err = c.client.Del(ctx, toDelete...).Err(); err != nil {
			return fmt.Errorf("failed to invalidate cache key %s: %w", k, err)
		}
	}
	return nil
}

// Version reads the generation counter of name; a missing counter is generation 0.
func (c *RedisCache) Version(ctx context.Context, name string) (uint64, error) {
	raw, err := c.client.Get(ctx, redisVerPrefix+name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read cache generation %s: %w", name, err)
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse cache generation %s: %w", name, err)
	}
	return v, nil
}

func (c *RedisCache) Close() error { return c.client.Close() }
