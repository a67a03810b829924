package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"ditto/internal/digest"
	"ditto/internal/model"
	"ditto/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workerFunc func(ctx context.Context) error

func (f workerFunc) Start(ctx context.Context) error { return f(ctx) }

func TestManagerStopsOnCancel(t *testing.T) {
	var stopped atomic.Int32
	block := workerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		stopped.Add(1)
		return nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewManager(block, block).Start(ctx) }()
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, int32(2), stopped.Load())
}

func TestManagerStopsOthersOnError(t *testing.T) {
	boom := errors.New("bind: address in use")
	failing := workerFunc(func(context.Context) error { return boom })
	block := workerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	err := NewManager(block, failing).Start(context.Background())
	assert.ErrorIs(t, err, boom)
}

type fakeRefresher struct{ calls atomic.Int32 }

func (f *fakeRefresher) Refresh(context.Context) ([]model.Subject, error) {
	f.calls.Add(1)
	return nil, nil
}

func TestCacheWarmerRefreshesOnInterval(t *testing.T) {
	r := &fakeRefresher{}
	w := &CacheWarmer{Listings: r, Interval: 10 * time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

type fakeSource struct{ subjects []model.Subject }

func (f fakeSource) Trending(context.Context) ([]model.Subject, error) { return f.subjects, nil }

type fakeSummarizer struct{}

func (fakeSummarizer) SummarizeSubject(_ context.Context, title, _, _ string) (string, error) {
	return "About " + title + ".", nil
}

func (fakeSummarizer) SummarizeTrending(context.Context, []model.Subject, string) (string, error) {
	return "", errors.New("quota exceeded")
}

func trendingSubjects() []model.Subject {
	board := &model.Board{Title: "Golang Nuts", Slug: "golang_nuts"}
	created := time.Date(2024, 4, 30, 10, 0, 0, 0, time.UTC)
	return []model.Subject{
		{ID: 1, Title: "Generics", Slug: "Generics", Points: 9, RankScore: 0.4, Board: board, CreatedAt: created},
		{ID: 2, Title: "Modules", Slug: "Modules", Points: 4, RankScore: 0.2, Board: board, CreatedAt: created},
		{ID: 3, Title: "Lonely", Slug: "Lonely", Points: 1, RankScore: 0, Board: board, CreatedAt: created},
		{ID: 4, Title: "Fuzzing", Slug: "Fuzzing", Points: 3, RankScore: 0.1, CreatedAt: created},
	}
}

func newBuilder(t *testing.T) (*DigestBuilder, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &DigestBuilder{
		Source:       fakeSource{subjects: trendingSubjects()},
		State:        storage.NewDigestState(rdb, "test"),
		Summarizer:   fakeSummarizer{},
		Name:         "trending",
		TopN:         2,
		MinItems:     2,
		OutputDir:    t.TempDir(),
		SkipDuration: 72 * time.Hour,
		BaseURL:      "https://ditto.example/",
		Title:        "{.Name} {.CurrentDate}",
		Now:          func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) },
	}, mr
}

func TestDigestBuilderPublishesOncePerDay(t *testing.T) {
	w, mr := newBuilder(t)
	ctx := context.Background()

	path, err := w.Build(ctx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(w.OutputDir, "trending", "trending-20240501.md"), path)

	doc, err := digest.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "trending 2024-05-01", doc.Frontmatter.Title)
	assert.Equal(t, "trending-20240501", doc.Frontmatter.Slug)
	assert.Equal(t, "Top highlights: Generics, Modules.", doc.Frontmatter.Summary)
	assert.Contains(t, doc.Body, "About Generics.")
	assert.Contains(t, doc.Body, "[Read more](https://ditto.example/b/golang_nuts/Generics/)")
	assert.NotContains(t, doc.Body, "Fuzzing")

	assert.True(t, mr.Exists("test:digest:published:trending:2024-05-01"))
	assert.True(t, mr.Exists("test:digest:skip:trending:1"))
	assert.True(t, mr.Exists("test:digest:skip:trending:2"))

	path, err = w.Build(ctx)
	require.NoError(t, err)
	assert.Empty(t, path, "period already published")
}

func TestDigestBuilderSkipsRecentlyFeatured(t *testing.T) {
	w, _ := newBuilder(t)
	ctx := context.Background()
	_, err := w.Build(ctx)
	require.NoError(t, err)

	// Next day: subjects 1 and 2 are still skipped, only Fuzzing qualifies.
	w.Now = func() time.Time { return time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC) }
	path, err := w.Build(ctx)
	require.NoError(t, err)
	assert.Empty(t, path)

	w.MinItems = 1
	path, err = w.Build(ctx)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "## Fuzzing")
	assert.Contains(t, string(raw), "https://ditto.example/subjects/4/")
}

func TestDigestBuilderForce(t *testing.T) {
	w, mr := newBuilder(t)
	ctx := context.Background()
	mr.Set("test:digest:published:trending:2024-05-01", "1")

	path, err := w.Build(ctx)
	require.NoError(t, err)
	assert.Empty(t, path)

	w.Force = true
	path, err = w.Build(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, path)
}
