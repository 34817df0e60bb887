package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

const (
	lockKeyPrefix  = "pulsedigest:lock:"
	blockKeyPrefix = "pulsedigest:block:"
	DeadLetterKey  = "pulsedigest:delivery:failed"
)

func ConnectRedis(ctx context.Context, redisURL string) error {
	if redisURL == "" {
		slog.Warn("REDIS_URL is not set")
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	Redis = redis.NewClient(opt)

	_, err = Redis.Ping(ctx).Result()
	return err
}

func CloseRedis() {
	if Redis != nil {
		Redis.Close()
	}
}

// AcquireDailyLock reports whether this run owns the digest for day.
func AcquireDailyLock(ctx context.Context, day string, ttl time.Duration) (bool, error) {
	return Redis.SetNX(ctx, lockKeyPrefix+day, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}

func ReleaseDailyLock(ctx context.Context, day string) error {
	return Redis.Del(ctx, lockKeyPrefix+day).Err()
}

func PushToQueue(ctx context.Context, queueKey string, data string) error {
	return Redis.LPush(ctx, queueKey, data).Err()
}

func GetQueueLength(ctx context.Context, queueKey string) (int64, error) {
	return Redis.LLen(ctx, queueKey).Result()
}

// BlockCache keeps rendered source blocks between runs of the same day.
type BlockCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBlockCache(client *redis.Client, ttl time.Duration) *BlockCache {
	return &BlockCache{client: client, ttl: ttl}
}

func (c *BlockCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, blockKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *BlockCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, blockKeyPrefix+key, value, c.ttl).Err()
}
