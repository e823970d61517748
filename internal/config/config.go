package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the cinetrack device process.
type Config struct {
	DB       DBConfig
	Redis    RedisConfig
	TMDB     TMDBConfig
	Store    StoreConfig
	Host     string
	Port     string
	DeviceID string
	LogLevel string

	CatalogCacheEnabled bool
	StreakCheckInterval time.Duration
}

// DBConfig holds PostgreSQL configuration.
type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

// DSN returns the PostgreSQL connection string.
func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TMDBConfig holds TMDB API configuration.
type TMDBConfig struct {
	APIKey    string
	BaseURL   string
	Language  string
	RateLimit float64 // requests per second
	Timeout   time.Duration
}

// StoreConfig selects the device key-value store driver.
type StoreConfig struct {
	Driver     string // badger, postgres, redis or memory
	BadgerPath string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	rateLimit, _ := strconv.ParseFloat(getEnv("TMDB_RATE_LIMIT", "10"), 64)
	timeoutSec, _ := strconv.Atoi(getEnv("TMDB_TIMEOUT_SECONDS", "15"))
	checkMinutes, _ := strconv.Atoi(getEnv("STREAK_CHECK_INTERVAL_MINUTES", "60"))
	cacheEnabled, _ := strconv.ParseBool(getEnv("CATALOG_CACHE_ENABLED", "true"))

	cfg := &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "cinetrack"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		TMDB: TMDBConfig{
			APIKey:    getEnv("TMDB_API_KEY", ""),
			BaseURL:   getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			Language:  getEnv("TMDB_LANGUAGE", "en-US"),
			RateLimit: rateLimit,
			Timeout:   time.Duration(timeoutSec) * time.Second,
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(getEnv("STORE_DRIVER", "badger")),
			BadgerPath: getEnv("BADGER_PATH", "data/cinetrack"),
		},
		Host:     getEnv("SERVER_HOST", "127.0.0.1"),
		Port:     getEnv("SERVER_PORT", "8090"),
		DeviceID: getEnv("DEVICE_ID", ""),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		CatalogCacheEnabled: cacheEnabled,
		StreakCheckInterval: time.Duration(checkMinutes) * time.Minute,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "badger", "postgres", "redis", "memory":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}
	if c.TMDB.RateLimit <= 0 {
		c.TMDB.RateLimit = 10
	}
	if c.TMDB.Timeout <= 0 {
		c.TMDB.Timeout = 15 * time.Second
	}
	if c.StreakCheckInterval <= 0 {
		c.StreakCheckInterval = time.Hour
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
