// Package cache memoizes computed values for a fixed time window.
package cache

import (
	"context"
	"time"
)

// Store is a read-through cache keyed by query shape. Values are computed at
// most once per key within ttl; writes elsewhere do not invalidate them.
type Store[T any] interface {
	GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error)
	// Forget drops key so the next GetOrCompute recomputes it.
	Forget(ctx context.Context, key string) error
}
