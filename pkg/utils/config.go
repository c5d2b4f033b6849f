// Package utils holds small shared helpers: environment-driven server
// configuration and misc parsing.
package utils

import (
	"os"
	"strconv"
	"time"
)

// ServerConfig is the runtime configuration of the API server, read from
// CARDVAULT_* environment variables with sensible defaults.
type ServerConfig struct {
	Addr          string        // HTTP listen address
	SyncAddr      string        // TCP price event feed address
	NotifyAddr    string        // UDP stale-price notifier address
	TablesPath    string        // optional multiplier tables override file
	StaleDays     int           // staleness threshold for the sweeper
	SweepInterval time.Duration // how often the sweeper runs
}

func LoadServerConfig() ServerConfig {
	return ServerConfig{
		Addr:          envOr("CARDVAULT_ADDR", ":8080"),
		SyncAddr:      envOr("CARDVAULT_SYNC_ADDR", ":7070"),
		NotifyAddr:    envOr("CARDVAULT_NOTIFY_ADDR", ":9090"),
		TablesPath:    os.Getenv("CARDVAULT_TABLES_PATH"),
		StaleDays:     envIntOr("CARDVAULT_STALE_DAYS", 90),
		SweepInterval: envDurationOr("CARDVAULT_SWEEP_INTERVAL", 24*time.Hour),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
