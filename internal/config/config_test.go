package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Threads)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.NotEmpty(t, cfg.CacheDir)
	assert.Equal(t, "fiq", filepath.Base(cfg.CacheDir))
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("FIQ_THREADS", "8")
	t.Setenv("FIQ_CACHE_DIR", "/tmp/fiq-test-cache")
	t.Setenv("FIQ_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Threads)
	assert.Equal(t, "/tmp/fiq-test-cache", cfg.CacheDir)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadIgnoresGarbageThreads(t *testing.T) {
	t.Setenv("FIQ_THREADS", "not-a-number")

	_, err := Load()
	// Viper surfaces the cast failure during Unmarshal.
	assert.Error(t, err)
}
