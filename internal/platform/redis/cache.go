package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"presence/pkg/platform/sentinel"
)

// JSONCache stores JSON-encoded snapshots under a key prefix.
// Get returns sentinel.ErrCacheMiss when the key is absent.
type JSONCache[T any] struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewJSONCache[T any](client redis.UniversalClient, prefix string, ttl time.Duration) *JSONCache[T] {
	return &JSONCache[T]{client: client, prefix: prefix, ttl: ttl}
}

func (c *JSONCache[T]) key(k string) string {
	return c.prefix + ":" + k
}

func (c *JSONCache[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, sentinel.ErrCacheMiss
	}
	if err != nil {
		return zero, fmt.Errorf("redis get %s: %w", key, errors.Join(err, sentinel.ErrUnavailable))
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		// treat corrupt entries as absent; the next Set overwrites them
		return zero, sentinel.ErrCacheMiss
	}
	return out, nil
}

func (c *JSONCache[T]) Set(ctx context.Context, key string, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, c.key(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, errors.Join(err, sentinel.ErrUnavailable))
	}
	return nil
}

// DeletePrefix removes every key under the cache prefix.
func (c *JSONCache[T]) DeletePrefix(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", c.prefix, errors.Join(err, sentinel.ErrUnavailable))
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
