package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[T any] struct {
	value   T
	expires time.Time
}

// Memory is an in-process Store. Hits return the exact value that was
// computed, so callers must treat it as read-only.
type Memory[T any] struct {
	// Now defaults to time.Now.
	Now func() time.Time

	mu      sync.Mutex
	entries map[string]entry[T]
	group   singleflight.Group
}

func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{Now: time.Now, entries: map[string]entry[T]{}}
}

func (m *Memory[T]) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

func (m *Memory[T]) lookup(key string) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expires) {
		var zero T
		return zero, false
	}
	return e.value, true
}

func (m *Memory[T]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	if v, ok := m.lookup(key); ok {
		return v, nil
	}
	// Concurrent misses on the same key share one computation, which ignores
	// the first caller's cancellation. Each caller stops waiting when its own
	// ctx is done.
	ch := m.group.DoChan(key, func() (any, error) {
		if v, ok := m.lookup(key); ok {
			return v, nil
		}
		v, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return v, err
		}
		m.mu.Lock()
		if m.entries == nil {
			m.entries = map[string]entry[T]{}
		}
		m.entries[key] = entry[T]{value: v, expires: m.now().Add(ttl)}
		m.mu.Unlock()
		return v, nil
	})
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	}
}

func (m *Memory[T]) Forget(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}
