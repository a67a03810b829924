package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState(t *testing.T) (*DigestState, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewDigestState(rdb, "test"), mr
}

func TestPublished(t *testing.T) {
	s, mr := newState(t)
	ctx := context.Background()

	ok, err := s.IsPublished(ctx, "trending", "2024-05-01")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.MarkPublished(ctx, "trending", "2024-05-01"))
	ok, err = s.IsPublished(ctx, "trending", "2024-05-01")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("test:digest:published:trending:2024-05-01"))
	assert.Equal(t, PublishedTTL, mr.TTL("test:digest:published:trending:2024-05-01"))

	ok, err = s.IsPublished(ctx, "other", "2024-05-01")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSkippedExpires(t *testing.T) {
	s, mr := newState(t)
	ctx := context.Background()

	require.NoError(t, s.MarkSkipped(ctx, "trending", 7, time.Hour))
	require.NoError(t, s.MarkSkipped(ctx, "trending", 8, 0))

	ok, err := s.IsSkipped(ctx, "trending", 7)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.IsSkipped(ctx, "trending", 8)
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(61 * time.Minute)
	ok, err = s.IsSkipped(ctx, "trending", 7)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStateErrors(t *testing.T) {
	s, mr := newState(t)
	mr.Close()
	_, err := s.IsPublished(context.Background(), "trending", "p")
	assert.Error(t, err)
	_, err = s.IsSkipped(context.Background(), "trending", 1)
	assert.Error(t, err)
}
