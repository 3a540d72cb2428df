package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/GTDGit/bookstore_api/pkg/ghn"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	// CORSAllowedHosts lists storefront/admin hosts allowed by CORS.
	CORSAllowedHosts []string

	DB      DatabaseConfig
	Redis   RedisConfig
	GHN     GHNConfig
	Catalog CatalogConfig
	Session SessionConfig
	Cache   CacheConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters. An empty Host disables
// the dimension cache.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// GHNConfig contains credentials for the GHN carrier API. Missing values do
// not fail Load; the shipping endpoints report a configuration error instead.
type GHNConfig struct {
	BaseURL       string
	Token         string
	ShopID        string
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration

	// Sender and notes put on created shipping orders.
	Sender       ghn.Sender
	OrderNote    string
	RequiredNote string
}

// ClientConfig converts the settings into a GHN client configuration.
func (c GHNConfig) ClientConfig() ghn.Config {
	return ghn.Config{
		BaseURL: c.BaseURL,
		Token:   c.Token,
		ShopID:  c.ShopID,
		Timeout: c.Timeout,
		Retry:   ghn.RetryPolicy{MaxAttempts: c.RetryAttempts, BaseDelay: c.RetryDelay},
	}
}

// CatalogConfig points at the bookstore backend used for dimension lookups.
type CatalogConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls checkout location-selection sessions.
type SessionConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// CacheConfig contains TTLs for Redis-backed caches.
type CacheConfig struct {
	DimensionTTL time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	cfg, err := LoadShipping()
	if err != nil {
		return nil, err
	}

	cfg.Port = getEnv("PORT", "8080")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSAllowedHosts = getEnvList("CORS_ALLOWED_HOSTS")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	if cfg.Session.IdleTTL, err = parseDurationEnv("SESSION_IDLE_TTL", "30m"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_IDLE_TTL: %w", err)
	}
	if cfg.Session.SweepInterval, err = parseDurationEnv("SESSION_SWEEP_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid SESSION_SWEEP_INTERVAL: %w", err)
	}
	if cfg.Cache.DimensionTTL, err = parseDurationEnv("DIMENSION_CACHE_TTL", "6h"); err != nil {
		return nil, fmt.Errorf("invalid DIMENSION_CACHE_TTL: %w", err)
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// LoadShipping reads only what the carrier and catalog clients need. The
// operator CLI uses it so it runs without a database.
func LoadShipping() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.Env = getEnv("ENV", "development")

	var err error
	cfg.GHN = GHNConfig{
		BaseURL:       getEnv("GHN_API_BASE_URL", ""),
		Token:         getEnv("GHN_API_TOKEN", ""),
		ShopID:        getEnv("GHN_SHOP_ID", ""),
		RetryAttempts: getEnvInt("GHN_RETRY_ATTEMPTS", 3),
		Sender: ghn.Sender{
			Name:         getEnv("GHN_FROM_NAME", "TheBookStore"),
			Phone:        getEnv("GHN_FROM_PHONE", ""),
			Address:      getEnv("GHN_FROM_ADDRESS", ""),
			WardName:     getEnv("GHN_FROM_WARD_NAME", ""),
			DistrictName: getEnv("GHN_FROM_DISTRICT_NAME", ""),
			ProvinceName: getEnv("GHN_FROM_PROVINCE_NAME", ""),
		},
		OrderNote:    getEnv("GHN_ORDER_NOTE", "TheBookStore"),
		RequiredNote: getEnv("GHN_REQUIRED_NOTE", ghn.RequiredNoteViewNoTrial),
	}
	if cfg.GHN.Timeout, err = parseDurationEnv("GHN_TIMEOUT", "20s"); err != nil {
		return nil, fmt.Errorf("invalid GHN_TIMEOUT: %w", err)
	}
	if cfg.GHN.RetryDelay, err = parseDurationEnv("GHN_RETRY_DELAY", "1s"); err != nil {
		return nil, fmt.Errorf("invalid GHN_RETRY_DELAY: %w", err)
	}
	if cfg.GHN.RetryAttempts < 1 {
		return nil, errors.New("GHN_RETRY_ATTEMPTS must be at least 1")
	}

	cfg.Catalog = CatalogConfig{BaseURL: getEnv("CATALOG_BASE_URL", "")}
	if cfg.Catalog.Timeout, err = parseDurationEnv("CATALOG_TIMEOUT", "10s"); err != nil {
		return nil, fmt.Errorf("invalid CATALOG_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvList splits a comma separated variable, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
