package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSessionSecret is used when SESSION_SECRET is unset.
const DefaultSessionSecret = "change-me-in-production"

type Config struct {
	DatabaseURL    string
	MediaDir       string
	SessionSecret  string
	ServerPort     string
	Environment    string
	Debug          bool
	WatchLocations bool
	WatchDebounce  time.Duration
	ScanOnStart    bool
	ScanInterval   time.Duration
	MaxConnections int
}

// Load reads an optional .env file and builds the configuration from the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to read .env file", "error", err)
	}

	return &Config{
		DatabaseURL:    getEnv("DATABASE_URL", "media.db"),
		MediaDir:       getEnv("MEDIA_DIR", "media"),
		SessionSecret:  getEnv("SESSION_SECRET", DefaultSessionSecret),
		ServerPort:     getEnv("PORT", "5000"),
		Environment:    getEnv("ENV", "development"),
		Debug:          getEnvBool("DEBUG", false),
		WatchLocations: getEnvBool("WATCH_LOCATIONS", false),
		WatchDebounce:  getEnvDuration("WATCH_DEBOUNCE", 5*time.Second),
		ScanOnStart:    getEnvBool("SCAN_ON_START", false),
		ScanInterval:   getEnvDuration("SCAN_INTERVAL", 0),
		MaxConnections: getEnvInt("MAX_CONNECTIONS", 64),
	}
}

// IsProduction reports whether the app runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
