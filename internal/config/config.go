package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Book sources
	BooksDir    string
	CatalogFile string

	// Auth (optional; empty disables bearer auth)
	APIKey string

	// Websocket origin patterns besides the request host
	AllowedOrigins []string

	// Render pool
	WorkerCount         int
	MaxQueueSize        int
	MaxConcurrentRender int

	// Request limits
	MaxBodyBytes int64

	// Reconstruction
	ConstrainWidth bool

	// State lifetimes
	JobTTL   time.Duration
	ViewTTL  time.Duration
	MaxViews int
	CacheTTL time.Duration

	// Latency stats window
	StatsWindow time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		BooksDir:    envOr("BOOKS_DIR", "./books"),
		CatalogFile: os.Getenv("CATALOG_FILE"),

		APIKey: os.Getenv("FOLIO_API_KEY"),

		AllowedOrigins: envList("ALLOWED_ORIGINS"),

		WorkerCount:         envInt("WORKER_COUNT", 4),
		MaxQueueSize:        envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentRender: envInt("MAX_CONCURRENT_RENDER", 4),

		MaxBodyBytes: envInt64("MAX_BODY_BYTES", 1<<20), // 1MB

		ConstrainWidth: envBool("REFLOW_CONSTRAIN_WIDTH", false),

		JobTTL:   envDuration("JOB_TTL", 1*time.Hour),
		ViewTTL:  envDuration("VIEW_TTL", 30*time.Minute),
		MaxViews: envInt("MAX_VIEWS", 256),
		CacheTTL: envDuration("CACHE_TTL", 10*time.Minute),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentRender <= 0 {
		cfg.MaxConcurrentRender = 4
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.ViewTTL <= 0 {
		cfg.ViewTTL = 30 * time.Minute
	}
	if cfg.MaxViews <= 0 {
		cfg.MaxViews = 256
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.BooksDir == "" {
		return fmt.Errorf("BOOKS_DIR is required")
	}
	info, err := os.Stat(c.BooksDir)
	if err != nil {
		return fmt.Errorf("BOOKS_DIR: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("BOOKS_DIR %q is not a directory", c.BooksDir)
	}
	if c.CatalogFile != "" {
		if _, err := os.Stat(c.CatalogFile); err != nil {
			return fmt.Errorf("CATALOG_FILE: %w", err)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
