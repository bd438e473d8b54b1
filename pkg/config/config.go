package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Stats sources
const (
	StatsSourceNone = "none"
	StatsSourceFile = "file"
	StatsSourceDB   = "db"
	StatsSourceAPI  = "api"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Catalog override (empty = embedded default catalog)
	CatalogPath string

	// Stats collaborator
	Stats    StatsConfig
	Database DatabaseConfig
	Redis    RedisConfig
	StatsAPI StatsAPIConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Cache warm job
	WarmSchedule string
}

// StatsConfig selects where empirical per-device averages come from
type StatsConfig struct {
	Source   string // none | file | db | api
	File     string
	CacheTTL time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration for the brew log store (read-only)
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// StatsAPIConfig holds the remote statistics endpoint configuration
type StatsAPIConfig struct {
	BaseURL   string
	Token     string
	RateLimit float64 // requests per second
	Timeout   time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env:         getEnv("ENV", "development"),
		CatalogPath: getEnv("CATALOG_PATH", ""),

		Stats: StatsConfig{
			Source:   getEnv("STATS_SOURCE", StatsSourceNone),
			File:     getEnv("STATS_FILE", ""),
			CacheTTL: getEnvAsDuration("STATS_CACHE_TTL", "10m"),
		},

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 5),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
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

		StatsAPI: StatsAPIConfig{
			BaseURL:   getEnv("STATS_API_URL", ""),
			Token:     getEnv("STATS_API_TOKEN", ""),
			RateLimit: getEnvAsFloat("STATS_API_RPS", 5),
			Timeout:   getEnvAsDuration("STATS_API_TIMEOUT", "10s"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),

		WarmSchedule: getEnv("WARM_SCHEDULE", "0 */10 * * * *"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.Stats.Source {
	case StatsSourceNone:
	case StatsSourceFile:
		if c.Stats.File == "" {
			return fmt.Errorf("STATS_FILE is required when STATS_SOURCE=file")
		}
	case StatsSourceDB:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when STATS_SOURCE=db")
		}
	case StatsSourceAPI:
		if c.StatsAPI.BaseURL == "" {
			return fmt.Errorf("STATS_API_URL is required when STATS_SOURCE=api")
		}
	default:
		return fmt.Errorf("STATS_SOURCE must be one of: none, file, db, api")
	}

	if c.StatsAPI.RateLimit <= 0 {
		return fmt.Errorf("STATS_API_RPS must be > 0")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
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
