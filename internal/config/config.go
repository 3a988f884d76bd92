// Package config assembles the process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/hbnb-web/hbnb"
	"github.com/yourorg/hbnb-web/internal/env"
)

type Config struct {
	Port int

	APIURL        string
	SearchVariant string
	// Layout overrides the variant's fragment layout when set.
	Layout        string
	APIRetryMax   int
	APITimeout    time.Duration
	APIRateLimit  float64

	Redis      RedisConfig
	SessionTTL time.Duration

	CatalogStaleAfter time.Duration

	PostgresDSN string

	Log LogConfig

	RateLimitPerMin int
	CORSOrigins     []string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type LogConfig struct {
	Level      slog.Level
	JSON       bool
	FluentHost string
	FluentPort int
}

// Load reads an optional .env and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := env.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		Port:          env.GetInt("PORT", 5000),
		APIURL:        strings.TrimRight(env.Get("HBNB_API_URL", hbnb.DefaultBaseURL), "/"),
		SearchVariant: strings.ToLower(env.Get("HBNB_SEARCH_VARIANT", "post")),
		Layout:        env.Get("HBNB_LAYOUT", ""),
		APIRetryMax:   env.GetInt("HBNB_API_RETRY_MAX", 0),
		APITimeout:    env.GetDuration("HBNB_API_TIMEOUT", 0),
		APIRateLimit:  env.GetFloat("HBNB_API_RATE_LIMIT", 0),
		Redis: RedisConfig{
			Addr:     env.Get("REDIS_ADDR", ""),
			Password: env.Get("REDIS_PASSWORD", ""),
			DB:       env.GetInt("REDIS_DB", 0),
		},
		SessionTTL:        env.GetDuration("SESSION_TTL", 24*time.Hour),
		CatalogStaleAfter: env.GetDuration("CATALOG_STALE_AFTER", 5*time.Minute),
		PostgresDSN:       env.Get("PG_DSN", ""),
		RateLimitPerMin:   env.GetInt("RATE_LIMIT_PER_MIN", 100),
		CORSOrigins:       env.GetList("CORS_ORIGINS"),
		Log: LogConfig{
			JSON:       env.GetBool("LOG_JSON", false),
			FluentHost: env.Get("FLUENT_HOST", ""),
			FluentPort: env.GetInt("FLUENT_PORT", 24224),
		},
	}

	if err := cfg.Log.Level.UnmarshalText([]byte(env.Get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SearchVariant {
	case "post", "get":
	default:
		return fmt.Errorf("HBNB_SEARCH_VARIANT must be post or get, got %q", c.SearchVariant)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.APIRetryMax < 0 {
		return fmt.Errorf("HBNB_API_RETRY_MAX must not be negative")
	}
	if c.RateLimitPerMin <= 0 {
		c.RateLimitPerMin = 100
	}
	return nil
}

// Addr is the listen address for the web server.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }
