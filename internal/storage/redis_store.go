package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PublishedTTL is how long a published period is remembered.
const PublishedTTL = 30 * 24 * time.Hour

// DigestState remembers which digest periods were published and which
// subjects were featured recently.
type DigestState struct {
	rdb    *redis.Client
	prefix string
}

func NewDigestState(rdb *redis.Client, prefix string) *DigestState {
	if prefix == "" {
		prefix = "ditto"
	}
	return &DigestState{rdb: rdb, prefix: prefix}
}

func (s *DigestState) publishedKey(digest, period string) string {
	return fmt.Sprintf("%s:digest:published:%s:%s", s.prefix, digest, period)
}

func (s *DigestState) skipKey(digest string, subjectID uint) string {
	return fmt.Sprintf("%s:digest:skip:%s:%d", s.prefix, digest, subjectID)
}

func (s *DigestState) IsPublished(ctx context.Context, digest, period string) (bool, error) {
	res, err := s.rdb.Get(ctx, s.publishedKey(digest, period)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res == "1", nil
}

func (s *DigestState) MarkPublished(ctx context.Context, digest, period string) error {
	return s.rdb.Set(ctx, s.publishedKey(digest, period), "1", PublishedTTL).Err()
}

// IsSkipped returns true if the subject was featured in the digest recently.
func (s *DigestState) IsSkipped(ctx context.Context, digest string, subjectID uint) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.skipKey(digest, subjectID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkSkipped keeps the subject out of the digest for d. Non-positive
// durations are a no-op.
func (s *DigestState) MarkSkipped(ctx context.Context, digest string, subjectID uint, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, s.skipKey(digest, subjectID), "1", d).Err()
}
