package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"checkout-service/internal/util"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore is a Redis-backed PersistentStore. All keys share a common
// prefix so several services can point at one instance.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisStore connects to Redis and verifies it with a ping.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{rdb: rdb, prefix: "checkout:"}, nil
}

// GetClient returns the underlying Redis client
func (r *RedisStore) GetClient() *redis.Client {
	return r.rdb
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}

func (r *RedisStore) Load(ctx context.Context, key string, v interface{}) (bool, error) {
	raw, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(raw, v); err != nil {
		util.GetLogger().Warn("Discarding corrupted record",
			zap.String("key", key),
			zap.Error(err))
		util.CorruptedRecordsTotal.Inc()
		_ = r.rdb.Del(ctx, r.prefix+key).Err()
		return false, nil
	}
	return true, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}
	if err := r.rdb.Set(ctx, r.prefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
