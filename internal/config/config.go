// Package config handles application configuration from environment variables
// and the persisted station file.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/randytsao24/kvvmonitor/internal/kvv"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	Env            string
	LogLevel       slog.Level
	StationsFile   string
	StopFinderURL  string
	DepartureURL   string
	DepartureLimit int
	HTTPTimeout    time.Duration
	LinesCacheTTL  time.Duration
	TimeZone       string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present; real
// environment variables take precedence over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getEnv("PORT", "3000"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getLevelEnv("LOG_LEVEL", slog.LevelInfo),
		StationsFile:   getEnv("STATIONS_FILE", "stations.yml"),
		StopFinderURL:  getEnv("KVV_STOPFINDER_URL", kvv.DefaultStopFinderURL),
		DepartureURL:   getEnv("KVV_DEPARTURE_URL", kvv.DefaultDepartureURL),
		DepartureLimit: getIntEnv("DEPARTURE_LIMIT", 10),
		HTTPTimeout:    getDurationEnv("HTTP_TIMEOUT_SECONDS", 15) * time.Second,
		LinesCacheTTL:  getDurationEnv("LINES_CACHE_TTL_SECONDS", 3600) * time.Second,
		TimeZone:       getEnv("TZ_NAME", "Europe/Berlin"),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.DepartureLimit <= 0 {
		errs = append(errs, errors.New("DEPARTURE_LIMIT must be positive"))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, errors.New("HTTP_TIMEOUT_SECONDS must be positive"))
	}
	if c.StationsFile == "" {
		errs = append(errs, errors.New("STATIONS_FILE must not be empty"))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultSeconds int) time.Duration {
	return time.Duration(getIntEnv(key, defaultSeconds))
}

func getLevelEnv(key string, defaultLevel slog.Level) slog.Level {
	value := os.Getenv(key)
	if value == "" {
		return defaultLevel
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(value))); err != nil {
		return defaultLevel
	}
	return level
}
