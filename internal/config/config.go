package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// Values are read by viper from FIQ_* environment variables, with defaults
// for everything so the tool works with zero setup.
type Config struct {
	// Threads overrides the walker worker count. 0 means "use the
	// per-scan-mode default" (4 for full scans, NumCPU/2 for filtered).
	Threads int `mapstructure:"threads"`

	// CacheDir is where trigram index snapshots are written.
	CacheDir string `mapstructure:"cache_dir"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration from the environment.
// FIQ_THREADS, FIQ_CACHE_DIR and FIQ_LOG_LEVEL map onto the struct fields.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("threads", 0)
	v.SetDefault("cache_dir", DefaultCacheDir())
	v.SetDefault("log_level", "warn")

	v.SetEnvPrefix("FIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv alone does not surface env-only keys through Unmarshal,
	// so bind each known key explicitly.
	for _, key := range []string{"threads", "cache_dir", "log_level"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}

// DefaultCacheDir returns the per-user cache directory for index snapshots.
// Falls back to a temp-dir subdirectory when the OS cache dir is unknown.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fiq")
	}
	return filepath.Join(base, "fiq")
}
