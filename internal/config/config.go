// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/sensor.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Hotspot categories — single source of truth, matches schema.sql
// --------------------------------------------------------------------------

const (
	HotspotVillage  = "village"
	HotspotSchool   = "school"
	HotspotFarmland = "farmland"
	HotspotCorridor = "corridor"
)

// Alert severity levels carried on alert zones.
const (
	AlertLow    = "low"
	AlertMedium = "medium"
	AlertHigh   = "high"
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Push providers
	FirebaseCredentialsFile string
	VAPIDPublicKey          string
	VAPIDPrivateKey         string
	VAPIDSubscriber         string // contact mailto: for the push service

	// Pipeline
	PipelineTimeout time.Duration

	// Maintenance
	DeviceOfflineAfter    time.Duration
	NotificationRetention time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("TUSKWATCH_DATABASE_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or TUSKWATCH_DATABASE_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		FirebaseCredentialsFile: envOr("FIREBASE_CREDENTIALS_FILE", ""),
		VAPIDPublicKey:          envOr("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey:         envOr("VAPID_PRIVATE_KEY", ""),
		VAPIDSubscriber:         envOr("VAPID_SUBSCRIBER", "mailto:alerts@tuskwatch.org"),

		PipelineTimeout: time.Duration(envInt("PIPELINE_TIMEOUT_SECONDS", 5)) * time.Second,

		DeviceOfflineAfter:    time.Duration(envInt("DEVICE_OFFLINE_AFTER_MINUTES", 30)) * time.Minute,
		NotificationRetention: time.Duration(envInt("NOTIFICATION_RETENTION_DAYS", 90)) * 24 * time.Hour,
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

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
