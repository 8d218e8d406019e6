// Package config loads the service configuration from WCHART_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/alfredjeanlab/worldchart/internal/i18n"
)

type Config struct {
	DatabaseURL string // WCHART_DATABASE_URL (optional, empty = in-memory store)
	GRPCAddr    string // WCHART_GRPC_ADDR (default ":9090")
	HTTPAddr    string // WCHART_HTTP_ADDR (default ":8080")
	NATSURL     string // WCHART_NATS_URL (optional, empty = no events)
	AuthToken   string // WCHART_AUTH_TOKEN (optional, empty = auth disabled)

	UpstreamURL     string        // WCHART_UPSTREAM_URL (required)
	UpstreamTimeout time.Duration // WCHART_UPSTREAM_TIMEOUT (default 10s)
	Lang            string        // WCHART_LANG (default "ko")
	LiveInterval    time.Duration // WCHART_LIVE_INTERVAL (default 5m; 0 = no polling)
	SeedFile        string        // WCHART_SEED_FILE (optional JSONL export loaded at startup)

	// Cache export
	SyncInterval   time.Duration // WCHART_SYNC_INTERVAL (default 1h; 0 = disabled)
	SyncS3Bucket   string        // WCHART_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // WCHART_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // WCHART_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // WCHART_SYNC_S3_KEY (default "worldchart/{date}/cache.jsonl")
	SyncGitRepo    string        // WCHART_SYNC_GIT_REPO (enables git when set; path to clone)
	SyncGitFile    string        // WCHART_SYNC_GIT_FILE (default "cache.jsonl")
	SyncGitBranch  string        // WCHART_SYNC_GIT_BRANCH (default "main")
}

// SyncEnabled reports whether any export destination is configured.
func (c *Config) SyncEnabled() bool {
	return c.SyncInterval > 0 && (c.SyncS3Bucket != "" || c.SyncGitRepo != "")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("WCHART_DATABASE_URL"),
		GRPCAddr:       envOrDefault("WCHART_GRPC_ADDR", ":9090"),
		HTTPAddr:       envOrDefault("WCHART_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("WCHART_NATS_URL"),
		AuthToken:      os.Getenv("WCHART_AUTH_TOKEN"),
		UpstreamURL:    os.Getenv("WCHART_UPSTREAM_URL"),
		Lang:           envOrDefault("WCHART_LANG", i18n.DefaultLanguage),
		SeedFile:       os.Getenv("WCHART_SEED_FILE"),
		SyncS3Bucket:   os.Getenv("WCHART_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("WCHART_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("WCHART_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("WCHART_SYNC_S3_KEY", "worldchart/{date}/cache.jsonl"),
		SyncGitRepo:    os.Getenv("WCHART_SYNC_GIT_REPO"),
		SyncGitFile:    envOrDefault("WCHART_SYNC_GIT_FILE", "cache.jsonl"),
		SyncGitBranch:  envOrDefault("WCHART_SYNC_GIT_BRANCH", "main"),
	}
	if c.UpstreamURL == "" {
		return nil, fmt.Errorf("WCHART_UPSTREAM_URL is required")
	}
	if !slices.Contains(i18n.Languages(), c.Lang) {
		return nil, fmt.Errorf("WCHART_LANG: unsupported language %q", c.Lang)
	}

	for _, d := range []struct {
		env      string
		fallback string
		dst      *time.Duration
	}{
		{"WCHART_UPSTREAM_TIMEOUT", "10s", &c.UpstreamTimeout},
		{"WCHART_LIVE_INTERVAL", "5m", &c.LiveInterval},
		{"WCHART_SYNC_INTERVAL", "1h", &c.SyncInterval},
	} {
		v, err := time.ParseDuration(envOrDefault(d.env, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.env, err)
		}
		if v < 0 {
			return nil, fmt.Errorf("%s: must not be negative", d.env)
		}
		*d.dst = v
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
