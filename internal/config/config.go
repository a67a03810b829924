package config

import (
	"fmt"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig holds the relational store connection settings.
type DatabaseConfig struct {
	DSN          string `mapstructure:"dsn"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// HTTPConfig controls the listing API server.
type HTTPConfig struct {
	Addr         string   `mapstructure:"addr"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// CacheConfig selects the listing cache backend.
type CacheConfig struct {
	Backend string `mapstructure:"backend"` // memory or redis
	TTL     string `mapstructure:"ttl"`     // duration string, e.g., "15m"
	Prefix  string `mapstructure:"prefix"`
}

// RankingConfig controls background recomputation.
type RankingConfig struct {
	WarmInterval string `mapstructure:"warm_interval"` // "0" disables the warmer
}

// MediaConfig controls uploaded photo compression.
type MediaConfig struct {
	WebPQuality float32 `mapstructure:"webp_quality"`
}

// OpenAIConfig configures the optional digest summarizer.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// DigestConfig controls the periodic trending digest.
type DigestConfig struct {
	Name             string `mapstructure:"name"`
	TopN             int    `mapstructure:"top_n"`
	MinItems         int    `mapstructure:"min_items"`
	OutputDir        string `mapstructure:"output_dir"`
	Language         string `mapstructure:"language"`
	Interval         string `mapstructure:"interval"`
	ItemSkipDuration string `mapstructure:"item_skip_duration"` // e.g., "72h"
	BaseURL          string `mapstructure:"base_url"`           // public forum URL for subject links
	Title            string `mapstructure:"title"`
	Preface          string `mapstructure:"preface"`
	Postscript       string `mapstructure:"postscript"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Ranking  RankingConfig  `mapstructure:"ranking"`
	Media    MediaConfig    `mapstructure:"media"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Digest   DigestConfig   `mapstructure:"digest"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "host=127.0.0.1 user=ditto password=ditto dbname=ditto port=5432 sslmode=disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if len(c.HTTP.AllowOrigins) == 0 {
		c.HTTP.AllowOrigins = []string{"*"}
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = "15m"
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "ditto"
	}
	if c.Ranking.WarmInterval == "" {
		c.Ranking.WarmInterval = "15m"
	}
	if c.Media.WebPQuality == 0 {
		c.Media.WebPQuality = 75
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Digest.Name == "" {
		c.Digest.Name = "trending"
	}
	if c.Digest.TopN == 0 {
		c.Digest.TopN = 20
	}
	if c.Digest.MinItems == 0 {
		c.Digest.MinItems = 5
	}
	if c.Digest.OutputDir == "" {
		c.Digest.OutputDir = "./out"
	}
	if c.Digest.Interval == "" {
		c.Digest.Interval = "30m"
	}
	if c.Digest.ItemSkipDuration == "" {
		c.Digest.ItemSkipDuration = "72h"
	}
	if c.Digest.Language == "" {
		c.Digest.Language = "English"
	}
}

// Durations holds the parsed duration settings.
type Durations struct {
	CacheTTL       time.Duration
	WarmInterval   time.Duration
	DigestInterval time.Duration
	ItemSkip       time.Duration
}

// ParseDurations validates and parses every duration string in c.
func (c Config) ParseDurations() (Durations, error) {
	var d Durations
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"cache.ttl", c.Cache.TTL, &d.CacheTTL},
		{"ranking.warm_interval", c.Ranking.WarmInterval, &d.WarmInterval},
		{"digest.interval", c.Digest.Interval, &d.DigestInterval},
		{"digest.item_skip_duration", c.Digest.ItemSkipDuration, &d.ItemSkip},
	}
	for _, f := range fields {
		v, err := time.ParseDuration(f.raw)
		if err != nil {
			return Durations{}, fmt.Errorf("invalid %s %q: %w", f.name, f.raw, err)
		}
		if v < 0 {
			return Durations{}, fmt.Errorf("invalid %s %q: negative duration", f.name, f.raw)
		}
		*f.dst = v
	}
	return d, nil
}
