package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// RedisStoreClient struct holds the Redis client and context
type RedisStoreClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisStoreClient wraps an already configured go-redis client.
func NewRedisStoreClient(ctx context.Context, client *redis.Client) *RedisStoreClient {
	return &RedisStoreClient{
		client: client,
		ctx:    ctx,
	}
}

// Set sets a key-value pair in Redis
func (r *RedisStoreClient) Set(key, value string) error {
	return r.client.Set(r.ctx, key, value, 0).Err()
}

// Get retrieves the value for a given key from Redis
func (r *RedisStoreClient) Get(key string) (string, error) {
	val, err := r.client.Get(r.ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return val, err
}

func (r *RedisStoreClient) Del(key string) error {
	return r.client.Del(r.ctx, key).Err()
}

func (r *RedisStoreClient) Keys(pattern string) ([]string, error) {
	return r.client.Keys(r.ctx, pattern).Result()
}

// AddToDateIndex adds or re-scores member in the sorted set at indexKey.
func (r *RedisStoreClient) AddToDateIndex(indexKey, member string, score float64) error {
	if err := r.client.ZAdd(r.ctx, indexKey, &redis.Z{Score: score, Member: member}).Err(); err != nil {
		return fmt.Errorf("failed to add %s to date index %s: %w", member, indexKey, err)
	}
	return nil
}

// RangeDateIndex returns the members scored within [min, max], lowest score first.
func (r *RedisStoreClient) RangeDateIndex(indexKey string, min, max float64) ([]string, error) {
	members, err := r.client.ZRangeByScore(r.ctx, indexKey, &redis.ZRangeBy{
		Min: strconv.FormatFloat(min, 'f', -1, 64),
		Max: strconv.FormatFloat(max, 'f', -1, 64),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to range date index %s: %w", indexKey, err)
	}
	return members, nil
}

func (r *RedisStoreClient) RemoveFromDateIndex(indexKey, member string) error {
	return r.client.ZRem(r.ctx, indexKey, member).Err()
}

func (r *RedisStoreClient) GetContext() context.Context {
	return r.ctx
}

func (r *RedisStoreClient) Ping() error {
	_, err := r.client.Ping(r.ctx).Result()
	if err != nil {
		log.Error().Err(err).Msg("[RedisStoreClient] Ping failed")
		return err
	}
	log.Debug().Msg("[RedisStoreClient] Connected to Redis")
	return nil
}
