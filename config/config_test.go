package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"DATABASE_URL", "MEDIA_DIR", "PORT", "ENV", "DEBUG", "WATCH_LOCATIONS", "WATCH_DEBOUNCE", "SCAN_ON_START", "SCAN_INTERVAL", "MAX_CONNECTIONS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "media.db", cfg.DatabaseURL)
	assert.Equal(t, "media", cfg.MediaDir)
	assert.Equal(t, "5000", cfg.ServerPort)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.WatchLocations)
	assert.Equal(t, 5*time.Second, cfg.WatchDebounce)
	assert.Equal(t, 64, cfg.MaxConnections)
	assert.Zero(t, cfg.ScanInterval)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "/tmp/catalog.db")
	t.Setenv("MEDIA_DIR", "/srv/media")
	t.Setenv("ENV", "production")
	t.Setenv("DEBUG", "true")
	t.Setenv("WATCH_DEBOUNCE", "250ms")
	t.Setenv("MAX_CONNECTIONS", "not-a-number")
	t.Setenv("SCAN_INTERVAL", "1h")

	cfg := Load()

	assert.Equal(t, "/tmp/catalog.db", cfg.DatabaseURL)
	assert.Equal(t, "/srv/media", cfg.MediaDir)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 250*time.Millisecond, cfg.WatchDebounce)
	assert.Equal(t, time.Hour, cfg.ScanInterval)
	assert.Equal(t, 64, cfg.MaxConnections)
}
