// Package config provides centralized configuration loaded from environment
// variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Chat platform (OneBot v11 HTTP API)
	OneBotAPIURL string
	OneBotToken  string

	// HTTP server (status endpoints + event webhook)
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// Contest watch loop
	WatchInterval  time.Duration
	AlertThreshold time.Duration

	// Upstream platforms
	CodeforcesBaseURL string
	SCPCBaseURL       string
	HTTPTimeout       time.Duration

	// Subscription store
	StoreDriver string // memory, bolt, postgres
	StorePath   string // bolt file path
	DatabaseURL string // postgres DSN

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Reply cache and static assets
	CacheEnabled bool
	AssetsDir    string
}

// Load reads configuration from environment variables with sensible defaults.
// Fields required only by `serve` (the OneBot URL, the Postgres DSN) are
// validated by their consumers, not here.
func Load() (*Config, error) {
	cfg := &Config{
		OneBotAPIURL: envOr("ONEBOT_API_URL", ""),
		OneBotToken:  envOr("ONEBOT_TOKEN", ""),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		WatchInterval:  time.Duration(envInt("WATCH_INTERVAL_SECONDS", 300)) * time.Second,
		AlertThreshold: time.Duration(envInt("ALERT_THRESHOLD_MINUTES", 120)) * time.Minute,

		CodeforcesBaseURL: envOr("CODEFORCES_BASE_URL", ""),
		SCPCBaseURL:       envOr("SCPC_BASE_URL", ""),
		HTTPTimeout:       time.Duration(envInt("HTTP_TIMEOUT_SECONDS", 10)) * time.Second,

		StoreDriver: envOr("STORE_DRIVER", "memory"),
		StorePath:   envOr("STORE_PATH", "acm-bot.db"),
		DatabaseURL: envOr("DATABASE_URL", ""),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
		AssetsDir:    envOr("ASSETS_DIR", "assets"),
	}

	if cfg.WatchInterval <= 0 {
		return nil, fmt.Errorf("WATCH_INTERVAL_SECONDS must be positive")
	}
	if cfg.AlertThreshold <= 0 {
		return nil, fmt.Errorf("ALERT_THRESHOLD_MINUTES must be positive")
	}
	return cfg, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
