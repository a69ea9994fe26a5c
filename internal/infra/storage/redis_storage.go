package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStorage 以 prefix:key 的字串存放快照，不設 TTL
type RedisStorage struct {
	client *redis.Client
	prefix string
}

func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{
		client: client,
		prefix: prefix,
	}
}

var _ Storage = (*RedisStorage)(nil)

func (r *RedisStorage) setPrefixKey(key string) string {
	if r.prefix == "" {
		return key
	}
	var builder strings.Builder
	builder.Grow(len(r.prefix) + 1 + len(key))
	builder.WriteString(r.prefix)
	builder.WriteString(":")
	builder.WriteString(key)
	return builder.String()
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.setPrefixKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", notFound(key)
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, nil
}

func (r *RedisStorage) Set(ctx context.Context, key string, value string) error {
	if err := r.client.Set(ctx, r.setPrefixKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.setPrefixKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Close is a no-op: clients come from GetRedisClient and are shared per address.
func (r *RedisStorage) Close() error {
	return nil
}
