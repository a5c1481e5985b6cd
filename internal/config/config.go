// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken        string
	DBPath             string
	ListenAddr         string
	SyncTTL            time.Duration
	SyncInterval       time.Duration
	MaxConcurrentSyncs int64
	MaxRetries         uint64
}

// Load reads configuration from environment variables and returns a validated
// Config. PRMIRROR_GITHUB_TOKEN is required. Optional variables with
// defaults: PRMIRROR_DB_PATH (prmirror.db), PRMIRROR_LISTEN_ADDR
// (127.0.0.1:8080), PRMIRROR_SYNC_TTL (5m), PRMIRROR_SYNC_INTERVAL (10m,
// 0 disables the background loop), PRMIRROR_MAX_CONCURRENT_SYNCS (4),
// PRMIRROR_MAX_RETRIES (3).
func Load() (*Config, error) {
	token := os.Getenv("PRMIRROR_GITHUB_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("PRMIRROR_GITHUB_TOKEN is required")
	}

	dbPath := "prmirror.db"
	if v, ok := os.LookupEnv("PRMIRROR_DB_PATH"); ok {
		dbPath = v
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("PRMIRROR_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	syncTTL := 5 * time.Minute
	if v, ok := os.LookupEnv("PRMIRROR_SYNC_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PRMIRROR_SYNC_TTL has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("PRMIRROR_SYNC_TTL must be positive, got %q", v)
		}
		syncTTL = parsed
	}

	syncInterval := 10 * time.Minute
	if v, ok := os.LookupEnv("PRMIRROR_SYNC_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("PRMIRROR_SYNC_INTERVAL has invalid duration %q: %w", v, err)
		}
		syncInterval = parsed
	}

	maxConcurrent := int64(4)
	if v, ok := os.LookupEnv("PRMIRROR_MAX_CONCURRENT_SYNCS"); ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("PRMIRROR_MAX_CONCURRENT_SYNCS must be a positive integer, got %q", v)
		}
		maxConcurrent = parsed
	}

	maxRetries := uint64(3)
	if v, ok := os.LookupEnv("PRMIRROR_MAX_RETRIES"); ok {
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("PRMIRROR_MAX_RETRIES must be a non-negative integer, got %q", v)
		}
		maxRetries = parsed
	}

	return &Config{
		GitHubToken:        token,
		DBPath:             dbPath,
		ListenAddr:         listenAddr,
		SyncTTL:            syncTTL,
		SyncInterval:       syncInterval,
		MaxConcurrentSyncs: maxConcurrent,
		MaxRetries:         maxRetries,
	}, nil
}
