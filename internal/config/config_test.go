package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "SERVER_PORT", "LOG_LEVEL", "SUPABASE_URL", "SUPABASE_ANON_KEY",
		"STORE_DRIVER", "FAVORITES_TABLE", "DISLIKES_TABLE", "CATALOG_API_URL",
		"CATALOG_TIMEOUT", "CATALOG_RATE_LIMIT", "SNAPSHOT_POLL_INTERVAL", "PROJECTION_READY_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := NewConfig()

	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected default server port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetSupabaseURL() != "" {
		t.Fatalf("expected default supabase url empty, got %s", cfg.GetSupabaseURL())
	}
	if cfg.GetStoreDriver() != StoreDriverSupabase {
		t.Fatalf("expected default store driver supabase, got %s", cfg.GetStoreDriver())
	}
	if cfg.GetFavoritesTable() != "favorite_annotations" || cfg.GetDislikesTable() != "dislike_annotations" {
		t.Fatalf("unexpected default tables %s/%s", cfg.GetFavoritesTable(), cfg.GetDislikesTable())
	}
	if cfg.GetCatalogAPIURL() != "https://digimon-api.vercel.app" {
		t.Fatalf("unexpected default catalog url %s", cfg.GetCatalogAPIURL())
	}
	if cfg.GetCatalogTimeout() != 10*time.Second {
		t.Fatalf("expected default catalog timeout 10s, got %s", cfg.GetCatalogTimeout())
	}
	if cfg.GetCatalogRateLimit() != 5 {
		t.Fatalf("expected default rate limit 5, got %v", cfg.GetCatalogRateLimit())
	}
	if cfg.GetSnapshotPollInterval() != 5*time.Second {
		t.Fatalf("expected default poll interval 5s, got %s", cfg.GetSnapshotPollInterval())
	}
	if cfg.GetProjectionReadyTimeout() != 15*time.Second {
		t.Fatalf("expected default ready timeout 15s, got %s", cfg.GetProjectionReadyTimeout())
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SUPABASE_URL", "http://localhost:54321")
	t.Setenv("SUPABASE_ANON_KEY", "test-key")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("CATALOG_API_URL", "http://catalog.local")
	t.Setenv("CATALOG_TIMEOUT", "2s")
	t.Setenv("CATALOG_RATE_LIMIT", "0.5")
	t.Setenv("SNAPSHOT_POLL_INTERVAL", "250ms")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.GetLogLevel())
	}
	if cfg.GetSupabaseKey() != "test-key" {
		t.Fatalf("expected supabase key test-key, got %s", cfg.GetSupabaseKey())
	}
	if cfg.GetStoreDriver() != StoreDriverMemory {
		t.Fatalf("expected store driver memory, got %s", cfg.GetStoreDriver())
	}
	if cfg.GetCatalogAPIURL() != "http://catalog.local" {
		t.Fatalf("expected catalog url override, got %s", cfg.GetCatalogAPIURL())
	}
	if cfg.GetCatalogTimeout() != 2*time.Second {
		t.Fatalf("expected catalog timeout 2s, got %s", cfg.GetCatalogTimeout())
	}
	if cfg.GetCatalogRateLimit() != 0.5 {
		t.Fatalf("expected rate limit 0.5, got %v", cfg.GetCatalogRateLimit())
	}
	if cfg.GetSnapshotPollInterval() != 250*time.Millisecond {
		t.Fatalf("expected poll interval 250ms, got %s", cfg.GetSnapshotPollInterval())
	}
}

func TestNewConfig_Fallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("CATALOG_TIMEOUT", "soon")
	t.Setenv("CATALOG_RATE_LIMIT", "-3")
	t.Setenv("SNAPSHOT_POLL_INTERVAL", "0s")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
	if cfg.GetCatalogTimeout() != 10*time.Second {
		t.Fatalf("expected fallback catalog timeout, got %s", cfg.GetCatalogTimeout())
	}
	if cfg.GetCatalogRateLimit() != 5 {
		t.Fatalf("expected fallback rate limit, got %v", cfg.GetCatalogRateLimit())
	}
	if cfg.GetSnapshotPollInterval() != 5*time.Second {
		t.Fatalf("expected fallback poll interval, got %s", cfg.GetSnapshotPollInterval())
	}
}
