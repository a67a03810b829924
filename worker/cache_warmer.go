package worker

import (
	"context"
	"log/slog"
	"time"

	"ditto/internal/model"
)

// Refresher recomputes the trending listing and replaces the cached copy.
type Refresher interface {
	Refresh(ctx context.Context) ([]model.Subject, error)
}

// CacheWarmer keeps the trending listing fresh so readers rarely pay for a
// recompute.
type CacheWarmer struct {
	Listings Refresher
	Interval time.Duration
}

func (w *CacheWarmer) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 15 * time.Minute
	}
	w.runOnce(ctx)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *CacheWarmer) runOnce(ctx context.Context) {
	subjects, err := w.Listings.Refresh(ctx)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error("cache-warmer: refresh failed", "error", err)
		}
		return
	}
	slog.Debug("cache-warmer: trending listing refreshed", "subjects", len(subjects))
}
