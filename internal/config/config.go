package config

import (
	"os"
	"strconv"
	"time"

	"catalog-annotations/internal/domain"
)

// Store drivers
const (
	StoreDriverSupabase = "supabase"
	StoreDriverMemory   = "memory"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort             string
	LogLevel               string
	SupabaseURL            string
	SupabaseKey            string
	StoreDriver            string
	FavoritesTable         string
	DislikesTable          string
	CatalogAPIURL          string
	CatalogTimeout         time.Duration
	CatalogRateLimit       float64
	SnapshotPollInterval   time.Duration
	ProjectionReadyTimeout time.Duration
}

// NewConfig creates a new configuration instance with default values
func NewConfig() domain.Config {
	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:             getEnvOrDefault("PORT", getEnvOrDefault("SERVER_PORT", "8080")),
		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
		SupabaseURL:            getEnvOrDefault("SUPABASE_URL", ""),
		SupabaseKey:            getEnvOrDefault("SUPABASE_ANON_KEY", ""),
		StoreDriver:            getEnvOrDefault("STORE_DRIVER", StoreDriverSupabase),
		FavoritesTable:         getEnvOrDefault("FAVORITES_TABLE", "favorite_annotations"),
		DislikesTable:          getEnvOrDefault("DISLIKES_TABLE", "dislike_annotations"),
		CatalogAPIURL:          getEnvOrDefault("CATALOG_API_URL", "https://digimon-api.vercel.app"),
		CatalogTimeout:         getEnvDurationOrDefault("CATALOG_TIMEOUT", 10*time.Second),
		CatalogRateLimit:       getEnvFloat64OrDefault("CATALOG_RATE_LIMIT", 5),
		SnapshotPollInterval:   getEnvDurationOrDefault("SNAPSHOT_POLL_INTERVAL", 5*time.Second),
		ProjectionReadyTimeout: getEnvDurationOrDefault("PROJECTION_READY_TIMEOUT", 15*time.Second),
	}
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetSupabaseURL returns the Supabase URL
func (c *AppConfig) GetSupabaseURL() string {
	return c.SupabaseURL
}

// GetSupabaseKey returns the Supabase anon key
func (c *AppConfig) GetSupabaseKey() string {
	return c.SupabaseKey
}

// GetStoreDriver returns the annotation store backend ("supabase" or "memory")
func (c *AppConfig) GetStoreDriver() string {
	return c.StoreDriver
}

// GetFavoritesTable returns the table holding favorite annotations
func (c *AppConfig) GetFavoritesTable() string {
	return c.FavoritesTable
}

// GetDislikesTable returns the table holding dislike annotations
func (c *AppConfig) GetDislikesTable() string {
	return c.DislikesTable
}

// GetCatalogAPIURL returns the base URL of the catalog API
func (c *AppConfig) GetCatalogAPIURL() string {
	return c.CatalogAPIURL
}

// GetCatalogTimeout returns the per-request catalog API timeout
func (c *AppConfig) GetCatalogTimeout() time.Duration {
	return c.CatalogTimeout
}

// GetCatalogRateLimit returns the allowed catalog requests per second
func (c *AppConfig) GetCatalogRateLimit() float64 {
	return c.CatalogRateLimit
}

// GetSnapshotPollInterval returns how often live subscriptions re-read the store
func (c *AppConfig) GetSnapshotPollInterval() time.Duration {
	return c.SnapshotPollInterval
}

// GetProjectionReadyTimeout bounds how long a one-shot request waits for a projection
func (c *AppConfig) GetProjectionReadyTimeout() time.Duration {
	return c.ProjectionReadyTimeout
}

// Helper functions for environment variable handling
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat64OrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
