package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Data     DataConfig
	Backtest BacktestConfig
	Yahoo    YahooConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds the price cache configuration
type DatabaseConfig struct {
	Enabled       bool
	Path          string
	TTL           time.Duration
	PruneSchedule string // Cron spec for cache pruning
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// DataConfig locates the static data files
type DataConfig struct {
	Dir            string // Metric catalog directory
	TickerListPath string
}

// BacktestConfig holds the pipeline parameters
type BacktestConfig struct {
	RiskFreeRate     float64
	InitialCapital   float64
	FetchConcurrency int
	Timeout          time.Duration
}

// YahooConfig overrides the Yahoo Finance endpoints. Empty values use the public API.
type YahooConfig struct {
	ChartURL  string
	SearchURL string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", "./data")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Path:          getEnv("DB_PATH", dataDir+"/price_cache.db"),
			PruneSchedule: getEnv("CACHE_PRUNE_SCHEDULE", "@every 6h"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		},
		Data: DataConfig{
			Dir:            dataDir,
			TickerListPath: getEnv("TICKER_LIST_PATH", dataDir+"/simpleStockList.json"),
		},
		Yahoo: YahooConfig{
			ChartURL:  getEnv("YAHOO_CHART_URL", ""),
			SearchURL: getEnv("YAHOO_SEARCH_URL", ""),
		},
	}

	var err error
	if config.Database.Enabled, err = getEnvBool("PRICE_CACHE_ENABLED", true); err != nil {
		return nil, err
	}
	if config.Database.TTL, err = getEnvDuration("PRICE_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if config.Backtest.RiskFreeRate, err = getEnvFloat("RISK_FREE_RATE", 0.01); err != nil {
		return nil, err
	}
	if config.Backtest.InitialCapital, err = getEnvFloat("INITIAL_CAPITAL", 1_000_000); err != nil {
		return nil, err
	}
	if config.Backtest.FetchConcurrency, err = getEnvInt("FETCH_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if config.Backtest.Timeout, err = getEnvDuration("BACKTEST_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}

	if config.Backtest.InitialCapital <= 0 {
		return nil, fmt.Errorf("INITIAL_CAPITAL must be positive, got %v", config.Backtest.InitialCapital)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return i, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// splitList splits a comma separated list, dropping blanks.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
