package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ditto/internal/ai"
	"ditto/internal/digest"
	"ditto/internal/model"
)

// TrendingSource provides the ranked subject listing.
type TrendingSource interface {
	Trending(ctx context.Context) ([]model.Subject, error)
}

// DigestState tracks published periods and recently featured subjects.
// *storage.DigestState satisfies it.
type DigestState interface {
	IsPublished(ctx context.Context, digest, period string) (bool, error)
	MarkPublished(ctx context.Context, digest, period string) error
	IsSkipped(ctx context.Context, digest string, subjectID uint) (bool, error)
	MarkSkipped(ctx context.Context, digest string, subjectID uint, d time.Duration) error
}

// DigestBuilder writes a Markdown digest of the trending subjects once per day.
type DigestBuilder struct {
	Source       TrendingSource
	State        DigestState
	Summarizer   ai.Summarizer // optional
	Name         string
	TopN         int
	MinItems     int
	OutputDir    string
	Interval     time.Duration // how often to evaluate/publish
	SkipDuration time.Duration
	BaseURL      string // for subject links
	Language     string
	Title        string
	Preface      string
	Postscript   string
	// Force publishes even if the current period already has a digest.
	Force bool
	// Now defaults to time.Now.
	Now func() time.Time
}

func (w *DigestBuilder) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 30 * time.Minute
	}
	if err := os.MkdirAll(filepath.Join(w.OutputDir, w.Name), 0o755); err != nil {
		return err
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

func (w *DigestBuilder) runOnce(ctx context.Context) {
	if _, err := w.Build(ctx); err != nil && ctx.Err() == nil {
		slog.Error("digest: build failed", "digest", w.Name, "error", err)
	}
}

func (w *DigestBuilder) now() time.Time {
	if w.Now == nil {
		return time.Now().UTC()
	}
	return w.Now().UTC()
}

// Build writes the digest for the current period and returns its path. It
// returns an empty path when the period is already published or too few
// subjects qualify.
func (w *DigestBuilder) Build(ctx context.Context) (string, error) {
	now := w.now()
	period := now.Format("2006-01-02")
	if !w.Force {
		published, err := w.State.IsPublished(ctx, w.Name, period)
		if err != nil {
			return "", fmt.Errorf("check published: %w", err)
		}
		if published {
			return "", nil
		}
	}

	subjects, err := w.Source.Trending(ctx)
	if err != nil {
		return "", fmt.Errorf("load trending: %w", err)
	}
	topN := w.TopN
	if topN <= 0 {
		topN = 20
	}
	picked := make([]model.Subject, 0, topN)
	for _, s := range subjects {
		if len(picked) == topN {
			break
		}
		// Nobody but the author starred it.
		if s.RankScore <= 0 {
			continue
		}
		skip, err := w.State.IsSkipped(ctx, w.Name, s.ID)
		if err != nil {
			slog.Error("digest: skip-check failed", "id", s.ID, "error", err)
			continue
		}
		if !skip {
			picked = append(picked, s)
		}
	}
	if len(picked) < w.MinItems {
		slog.Debug("digest: not enough subjects", "digest", w.Name, "have", len(picked), "want", w.MinItems)
		return "", nil
	}

	md, err := digest.Render(w.data(ctx, now, picked))
	if err != nil {
		return "", err
	}
	dir := filepath.Join(w.OutputDir, w.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, w.slug(now)+".md")
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("write digest: %w", err)
	}
	if err := w.State.MarkPublished(ctx, w.Name, period); err != nil {
		return "", fmt.Errorf("mark published: %w", err)
	}
	for _, s := range picked {
		if err := w.State.MarkSkipped(ctx, w.Name, s.ID, w.SkipDuration); err != nil {
			slog.Error("digest: mark skipped failed", "id", s.ID, "error", err)
		}
	}
	slog.Info("digest: published", "path", path, "subjects", len(picked))
	return path, nil
}

func (w *DigestBuilder) slug(now time.Time) string {
	return fmt.Sprintf("%s-%s", strings.ToLower(w.Name), now.Format("20060102"))
}

func (w *DigestBuilder) data(ctx context.Context, now time.Time, subjects []model.Subject) digest.Data {
	title := strings.TrimSpace(digest.ExpandVars(w.Title, w.Name, now))
	if title == "" {
		title = fmt.Sprintf("Trending on ditto %s", now.Format("2006-01-02"))
	}
	d := digest.Data{
		Title:      title,
		Slug:       w.slug(now),
		Datetime:   now.Format("2006-01-02 15:04"),
		Preface:    digest.ExpandVars(w.Preface, w.Name, now),
		Postscript: digest.ExpandVars(w.Postscript, w.Name, now),
		Items:      make([]digest.Item, 0, len(subjects)),
	}
	for _, s := range subjects {
		it := digest.Item{
			Title:   s.Title,
			URL:     w.subjectURL(s),
			Stars:   s.Points,
			Created: s.CreatedAt.UTC().Format("2006-01-02 15:04"),
		}
		if s.Board != nil {
			it.Board = s.Board.Title
		}
		if w.Summarizer != nil {
			if desc, err := w.Summarizer.SummarizeSubject(ctx, s.Title, s.Body, w.Language); err == nil {
				it.Description = desc
			}
		}
		d.Items = append(d.Items, it)
	}

	if w.Summarizer != nil {
		if sum, err := w.Summarizer.SummarizeTrending(ctx, subjects, w.Language); err == nil {
			d.Summary = strings.TrimSpace(sum)
		}
	}
	if d.Summary == "" {
		titles := make([]string, 0, 3)
		for i := 0; i < len(subjects) && i < 3; i++ {
			titles = append(titles, subjects[i].Title)
		}
		d.Summary = fmt.Sprintf("Top highlights: %s.", strings.Join(titles, ", "))
	}
	return d
}

func (w *DigestBuilder) subjectURL(s model.Subject) string {
	base := strings.TrimRight(w.BaseURL, "/")
	if s.Board != nil && s.Board.Slug != "" {
		return fmt.Sprintf("%s/b/%s/%s/", base, s.Board.Slug, s.Slug)
	}
	return fmt.Sprintf("%s/subjects/%d/", base, s.ID)
}
