package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store shared by every process pointing at the same Redis.
// Values round-trip through JSON.
type Redis[T any] struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis[T any](rdb *redis.Client, prefix string) *Redis[T] {
	return &Redis[T]{rdb: rdb, prefix: prefix}
}

func (r *Redis[T]) key(k string) string {
	return fmt.Sprintf("%s:cache:%s", r.prefix, k)
}

func (r *Redis[T]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	var zero T
	b, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	switch {
	case err == nil:
		var v T
		uerr := json.Unmarshal(b, &v)
		if uerr == nil {
			return v, nil
		}
		// A payload from an older layout is treated as a miss.
		slog.Warn("cache: undecodable entry, recomputing", "key", key, "error", uerr)
	case !errors.Is(err, redis.Nil):
		return zero, fmt.Errorf("cache get %s: %w", key, err)
	}

	v, err := compute(ctx)
	if err != nil {
		return zero, err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return zero, fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := r.rdb.Set(ctx, r.key(key), payload, ttl).Err(); err != nil {
		return zero, fmt.Errorf("cache set %s: %w", key, err)
	}
	return v, nil
}

func (r *Redis[T]) Forget(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, r.key(key)).Err()
}
