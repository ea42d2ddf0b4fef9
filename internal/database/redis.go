package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/datalyr/foresight-go/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type RedisClient struct {
	Client *redis.Client
}

func NewRedisConnection(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logrus.Info("Successfully connected to Redis")

	return &RedisClient{Client: rdb}, nil
}

// NewRedisConnectionWithRetry connects like NewRedisConnection but retries
// the initial ping with exponential backoff. maxRetries of zero or less
// means a single attempt.
func NewRedisConnectionWithRetry(cfg config.RedisConfig, maxRetries int) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backoff := time.Second
	var connectionErr error
	for attempt := 0; ; attempt++ {
		connectionErr = rdb.Ping(ctx).Err()
		if connectionErr == nil || attempt >= maxRetries {
			break
		}

		logrus.WithError(connectionErr).Warnf("Redis connection attempt %d failed, retrying in %v", attempt+1, backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", connectionErr)
		}
		backoff *= 2
	}
	if connectionErr != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", connectionErr)
	}

	logrus.Info("Successfully connected to Redis")

	return &RedisClient{Client: rdb}, nil
}

func (r *RedisClient) Close() {
	if r.Client != nil {
		r.Client.Close()
		logrus.Info("Redis connection closed")
	}
}

func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if r.Client == nil {
		return errors.New("redis client is nil")
	}
	return r.Client.Ping(ctx).Err()
}

// Cache operations
func (r *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if r.Client == nil {
		return errors.New("redis client is nil")
	}
	return r.Client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisClient) Get(ctx context.Context, key string) (string, error) {
	if r.Client == nil {
		return "", errors.New("redis client is nil")
	}
	return r.Client.Get(ctx, key).Result()
}

func (r *RedisClient) Delete(ctx context.Context, keys ...string) error {
	if r.Client == nil {
		return errors.New("redis client is nil")
	}
	return r.Client.Del(ctx, keys...).Err()
}

func (r *RedisClient) Exists(ctx context.Context, keys ...string) (int64, error) {
	if r.Client == nil {
		return 0, errors.New("redis client is nil")
	}
	return r.Client.Exists(ctx, keys...).Result()
}
