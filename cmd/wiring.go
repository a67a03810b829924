package cmd

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ditto/internal/ai"
	"ditto/internal/cache"
	"ditto/internal/config"
	"ditto/internal/model"
	"ditto/internal/storage"
	"ditto/internal/store"
	"ditto/internal/trending"
	"ditto/worker"

	"github.com/redis/go-redis/v9"
)

func openStore(cfg config.Config) (*store.Store, error) {
	db, err := store.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	return store.New(db), nil
}

// newListingCache builds the cache backend named by cache.backend. rdb is
// only used by the redis backend.
func newListingCache(cfg config.CacheConfig, rdb *redis.Client) (cache.Store[[]model.Subject], error) {
	switch strings.ToLower(cfg.Backend) {
	case "memory":
		return cache.NewMemory[[]model.Subject](), nil
	case "redis":
		return cache.NewRedis[[]model.Subject](rdb, cfg.Prefix), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func newTrendingService(cfg config.Config, st *store.Store, rdb *redis.Client) (*trending.Service, error) {
	d, err := cfg.ParseDurations()
	if err != nil {
		return nil, err
	}
	c, err := newListingCache(cfg.Cache, rdb)
	if err != nil {
		return nil, err
	}
	return trending.NewService(st, c, d.CacheTTL), nil
}

func newSummarizer(cfg config.OpenAIConfig) ai.Summarizer {
	if cfg.APIKey == "" {
		return nil
	}
	s, err := ai.NewOpenAI(ai.Config{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL})
	if err != nil {
		slog.Warn("openai: summarizer disabled", "error", err)
		return nil
	}
	return s
}

func newDigestBuilder(cfg config.Config, src worker.TrendingSource, rdb *redis.Client, d config.Durations) *worker.DigestBuilder {
	dc := cfg.Digest
	return &worker.DigestBuilder{
		Source:       src,
		State:        storage.NewDigestState(rdb, cfg.Cache.Prefix),
		Name:         dc.Name,
		TopN:         dc.TopN,
		MinItems:     dc.MinItems,
		OutputDir:    dc.OutputDir,
		Interval:     d.DigestInterval,
		SkipDuration: d.ItemSkip,
		BaseURL:      dc.BaseURL,
		Language:     dc.Language,
		Title:        dc.Title,
		Preface:      dc.Preface,
		Postscript:   dc.Postscript,
		Summarizer:   newSummarizer(cfg.OpenAI),
		Now:          time.Now,
	}
}
