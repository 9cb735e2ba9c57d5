package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// SSOT: every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External sources
	AlphaVantage AlphaVantageConfig
	Analyst      AnalystConfig

	// Integration
	FreshnessWindow time.Duration // max age of a cached integrated record

	// HTTP
	HTTP        HTTPConfig
	CORSOrigins []string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	// Connection pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// AlphaVantageConfig holds Alpha Vantage API configuration.
type AlphaVantageConfig struct {
	APIKey    string
	BaseURL   string
	Interval  time.Duration // minimum spacing between API calls
	CacheFile string        // persisted response cache
}

// AnalystConfig holds the analyst ratings dataset configuration.
type AnalystConfig struct {
	CSVPath string
}

// HTTPConfig holds HTTP server timeouts.
type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load reads configuration from environment variables.
// SSOT: this is the only function that calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		AlphaVantage: AlphaVantageConfig{
			APIKey:    getEnv("ALPHA_VANTAGE_API_KEY", ""),
			BaseURL:   getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
			Interval:  getEnvAsDuration("ALPHA_VANTAGE_INTERVAL", "12s"),
			CacheFile: getEnv("ALPHA_VANTAGE_CACHE_FILE", "av_cache.json"),
		},

		Analyst: AnalystConfig{
			CSVPath: getEnv("ANALYST_CSV_PATH", "analyst_data.csv"),
		},

		FreshnessWindow: getEnvAsDuration("FRESHNESS_WINDOW", "1h"),

		HTTP: HTTPConfig{
			ReadTimeout:  getEnvAsDuration("HTTP_READ_TIMEOUT", "15s"),
			WriteTimeout: getEnvAsDuration("HTTP_WRITE_TIMEOUT", "15s"),
			IdleTimeout:  getEnvAsDuration("HTTP_IDLE_TIMEOUT", "60s"),
		},

		CORSOrigins: getEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:5173"}),

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.FreshnessWindow <= 0 {
		return fmt.Errorf("FRESHNESS_WINDOW must be positive")
	}

	if c.AlphaVantage.Interval <= 0 {
		return fmt.Errorf("ALPHA_VANTAGE_INTERVAL must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
		"backend/.env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
