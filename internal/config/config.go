package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                string
	DBPath              string
	LogLevel            string
	CatalogSource       string
	CORSAllowedOrigins  []string
	EventQueueSize      int
	EventWorkerCount    int
	RecentAttemptsLimit int
	ShutdownTimeoutSecs int
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:                envOr("ADDR", ":8080"),
		DBPath:              envOr("DB_PATH", "file:tonica.db"),
		LogLevel:            envOr("LOG_LEVEL", "INFO"),
		CatalogSource:       envOr("CATALOG_SOURCE", ""),
		CORSAllowedOrigins:  envListOr("CORS_ALLOWED_ORIGINS", []string{"*"}),
		EventQueueSize:      envIntOr("EVENT_QUEUE_SIZE", 256),
		EventWorkerCount:    envIntOr("EVENT_WORKER_COUNT", 2),
		RecentAttemptsLimit: envIntOr("RECENT_ATTEMPTS_LIMIT", 10),
		ShutdownTimeoutSecs: envIntOr("SHUTDOWN_TIMEOUT_SECS", 10),
	}
}

// Validate checks the configuration and reports every problem found,
// not just the first one.
func (c Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if !isValidLogLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR; got %q", c.LogLevel))
	}
	// Empty source means the embedded catalog; URLs are checked at load time.
	if c.CatalogSource != "" && !isURL(c.CatalogSource) {
		if _, err := os.Stat(c.CatalogSource); err != nil {
			errs = append(errs, fmt.Errorf("CATALOG_SOURCE file not found: %s", c.CatalogSource))
		}
	}
	if c.EventQueueSize < 1 {
		errs = append(errs, fmt.Errorf("EVENT_QUEUE_SIZE must be at least 1; got %d", c.EventQueueSize))
	}
	if c.EventWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("EVENT_WORKER_COUNT must be at least 1; got %d", c.EventWorkerCount))
	}
	if c.RecentAttemptsLimit < 1 {
		errs = append(errs, fmt.Errorf("RECENT_ATTEMPTS_LIMIT must be at least 1; got %d", c.RecentAttemptsLimit))
	}
	if c.ShutdownTimeoutSecs < 1 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT_SECS must be at least 1; got %d", c.ShutdownTimeoutSecs))
	}

	return errors.Join(errs...)
}

func isValidLogLevel(level string) bool {
	switch strings.ToUpper(level) {
	case "DEBUG", "INFO", "WARN", "ERROR":
		return true
	}
	return false
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envListOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
