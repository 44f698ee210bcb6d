package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisStorage struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStorage creates a Redis-backed Storage. A positive ttl is applied to every Set
// so abandoned sessions eventually disappear; zero keeps keys forever.
func NewRedisStorage(client *redis.Client, ttl time.Duration, logger *zap.Logger) Storage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisStorage{
		client: client,
		ttl:    ttl,
		logger: logger.Named("RedisStorage"),
	}
}

func (r *redisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		r.logger.Error("Failed to get key from redis", zap.String("key", key), zap.Error(err))
		return "", false, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}
	return val, true, nil
}

func (r *redisStorage) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to set key in redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}
	return nil
}

func (r *redisStorage) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete key from redis", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete key %s from redis: %w", key, err)
	}
	return nil
}
