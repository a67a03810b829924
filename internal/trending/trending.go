// Package trending serves the trending and recent subject listings.
package trending

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ditto/internal/cache"
	"ditto/internal/model"
	"ditto/internal/ranking"
)

// Cache keys, one per listing.
const (
	KeyTrending = "subjects:trending"
	KeyRecent   = "subjects:recent"
)

// DefaultTTL is how long a computed listing is served before recomputation.
const DefaultTTL = 15 * time.Minute

// SubjectStore is the storage the listings are computed from.
type SubjectStore interface {
	// ActiveSubjects returns active subjects newest first with Points set.
	ActiveSubjects(ctx context.Context) ([]model.Subject, error)
	SaveRanks(ctx context.Context, subjects []model.Subject) error
}

// Service computes listings through a cache. Listings returned from the cache
// are shared between callers and must not be modified.
type Service struct {
	store SubjectStore
	cache cache.Store[[]model.Subject]
	ttl   time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewService(store SubjectStore, c cache.Store[[]model.Subject], ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{store: store, cache: c, ttl: ttl, Now: time.Now}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Recompute scores every active subject as of now, persists the scores and
// returns the subjects ordered by score, highest first. It bypasses the cache.
func (s *Service) Recompute(ctx context.Context) ([]model.Subject, error) {
	start := time.Now()
	subjects, err := s.store.ActiveSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("trending: load subjects: %w", err)
	}
	subjects = ranking.Rank(subjects, s.now())
	if err := s.store.SaveRanks(ctx, subjects); err != nil {
		return nil, fmt.Errorf("trending: persist ranks: %w", err)
	}
	slog.Info("trending: recomputed ranks", "subjects", len(subjects), "duration", time.Since(start))
	return subjects, nil
}

// Trending returns the ranked listing, recomputing it at most once per TTL.
func (s *Service) Trending(ctx context.Context) ([]model.Subject, error) {
	return s.cache.GetOrCompute(ctx, KeyTrending, s.ttl, s.Recompute)
}

// Recent returns active subjects newest first, cached like Trending.
func (s *Service) Recent(ctx context.Context) ([]model.Subject, error) {
	return s.cache.GetOrCompute(ctx, KeyRecent, s.ttl, func(ctx context.Context) ([]model.Subject, error) {
		subjects, err := s.store.ActiveSubjects(ctx)
		if err != nil {
			return nil, fmt.Errorf("trending: load recent subjects: %w", err)
		}
		return subjects, nil
	})
}

// Refresh drops the cached trending listing and computes a fresh one.
func (s *Service) Refresh(ctx context.Context) ([]model.Subject, error) {
	if err := s.cache.Forget(ctx, KeyTrending); err != nil {
		return nil, fmt.Errorf("trending: forget cached listing: %w", err)
	}
	return s.Trending(ctx)
}
