package config

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/yourorg/hbnb-web/hbnb"
)

func noEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "HBNB_API_URL", "HBNB_SEARCH_VARIANT", "HBNB_API_RETRY_MAX", "HBNB_API_TIMEOUT",
		"HBNB_API_RATE_LIMIT", "REDIS_ADDR", "SESSION_TTL", "PG_DSN", "LOG_LEVEL", "LOG_JSON", "RATE_LIMIT_PER_MIN", "CORS_ORIGINS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 5000 {
		t.Errorf("Port = %d, want 5000", cfg.Port)
	}
	if cfg.APIURL != hbnb.DefaultBaseURL {
		t.Errorf("APIURL = %q, want %q", cfg.APIURL, hbnb.DefaultBaseURL)
	}
	if cfg.SearchVariant != "post" {
		t.Errorf("SearchVariant = %q, want %q", cfg.SearchVariant, "post")
	}
	if cfg.APIRetryMax != 0 || cfg.APITimeout != 0 {
		t.Errorf("retry/timeout = %d/%v, want no retry and no timeout", cfg.APIRetryMax, cfg.APITimeout)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.Redis.Enabled() {
		t.Error("redis enabled without REDIS_ADDR")
	}
	if cfg.Log.Level != slog.LevelInfo {
		t.Errorf("Log.Level = %v", cfg.Log.Level)
	}
	if cfg.Addr() != ":5000" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("HBNB_API_URL", "http://api.local/api/v1/")
	t.Setenv("HBNB_SEARCH_VARIANT", "GET")
	t.Setenv("HBNB_API_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("HBNB_LAYOUT", "title_box")

	cfg, err := Load(noEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://api.local/api/v1" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.SearchVariant != "get" {
		t.Errorf("SearchVariant = %q, want %q", cfg.SearchVariant, "get")
	}
	if cfg.APITimeout != 3*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout)
	}
	if cfg.Layout != "title_box" {
		t.Errorf("Layout = %q, want %q", cfg.Layout, "title_box")
	}
	if cfg.Log.Level != slog.LevelDebug {
		t.Errorf("Log.Level = %v", cfg.Log.Level)
	}
	if len(cfg.CORSOrigins) != 2 || !cfg.Redis.Enabled() {
		t.Errorf("CORSOrigins = %q, redis = %v", cfg.CORSOrigins, cfg.Redis.Enabled())
	}
}

func TestLoadRejectsUnknownVariant(t *testing.T) {
	t.Setenv("HBNB_SEARCH_VARIANT", "put")
	if _, err := Load(noEnvFile(t)); err == nil {
		t.Fatal("expected error for unknown variant")
	}
}
