package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/flist-dev/flist/internal/lock"
)

// Config is the complete flist configuration. It covers the host-level
// tunables: coordination timing, request forwarding, entry naming, and
// logging. Per-project settings (archive cap, quick-launch suffixes) live
// in each project's flist.toml instead.
type Config struct {
	Lock    LockConfig    `mapstructure:"lock"`
	Remote  RemoteConfig  `mapstructure:"remote"`
	Title   TitleConfig   `mapstructure:"title"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// LockConfig controls project lock coordination timing
type LockConfig struct {
	// AcquireTimeoutMs bounds how long a command waits for the project lock
	AcquireTimeoutMs int `mapstructure:"acquire_timeout_ms"`
	// RetryIntervalMs is the pause between acquisition attempts
	RetryIntervalMs int `mapstructure:"retry_interval_ms"`
	// HeartbeatIntervalMs is how often a long-lived session refreshes its lock
	HeartbeatIntervalMs int `mapstructure:"heartbeat_interval_ms"`
	// StalenessThresholdMs is the heartbeat age beyond which a lock is
	// considered abandoned and may be reclaimed. Must exceed the heartbeat
	// interval.
	StalenessThresholdMs int `mapstructure:"staleness_threshold_ms"`
}

// RemoteConfig controls forwarding of inserts to a running view session
type RemoteConfig struct {
	// Enabled controls whether add forwards to a listening lock holder
	// instead of failing on a held lock (default: true)
	Enabled bool `mapstructure:"enabled"`
	// DialTimeoutMs bounds the connection attempt to the holder's listener
	DialTimeoutMs int `mapstructure:"dial_timeout_ms"`
}

// TitleConfig controls page-title fetching for URL entries
type TitleConfig struct {
	// Enabled controls whether unnamed URL entries get their page title
	// fetched as the entry name (default: true)
	Enabled bool `mapstructure:"enabled"`
	// FetchTimeoutMs bounds the title request
	FetchTimeoutMs int `mapstructure:"fetch_timeout_ms"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging is written at all (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is the directory flist.log is written to; empty logs into the
	// project directory
	Dir string `mapstructure:"dir"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Lock: LockConfig{
			AcquireTimeoutMs:     250,
			RetryIntervalMs:      25,
			HeartbeatIntervalMs:  2000,
			StalenessThresholdMs: 10000,
		},
		Remote: RemoteConfig{
			Enabled:       true,
			DialTimeoutMs: 250,
		},
		Title: TitleConfig{
			Enabled:        true,
			FetchTimeoutMs: 1000,
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
			Dir:     "",
		},
	}
}

// AcquireTimeout returns the lock acquisition timeout as a time.Duration
func (c *LockConfig) AcquireTimeout() time.Duration {
	return time.Duration(c.AcquireTimeoutMs) * time.Millisecond
}

// RetryInterval returns the retry interval as a time.Duration
func (c *LockConfig) RetryInterval() time.Duration {
	return time.Duration(c.RetryIntervalMs) * time.Millisecond
}

// HeartbeatInterval returns the heartbeat interval as a time.Duration
func (c *LockConfig) HeartbeatInterval() time.Duration {
	return time.Duration(c.HeartbeatIntervalMs) * time.Millisecond
}

// StalenessThreshold returns the staleness threshold as a time.Duration
func (c *LockConfig) StalenessThreshold() time.Duration {
	return time.Duration(c.StalenessThresholdMs) * time.Millisecond
}

// LockOptions converts the configured timing into the lock package's
// config form.
func (c *LockConfig) LockOptions() lock.Config {
	return lock.Config{
		AcquireTimeout:     c.AcquireTimeout(),
		RetryInterval:      c.RetryInterval(),
		HeartbeatInterval:  c.HeartbeatInterval(),
		StalenessThreshold: c.StalenessThreshold(),
	}
}

// DialTimeout returns the forward dial timeout as a time.Duration
func (c *RemoteConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMs) * time.Millisecond
}

// FetchTimeout returns the title fetch timeout as a time.Duration
func (c *TitleConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Lock defaults
	viper.SetDefault("lock.acquire_timeout_ms", defaults.Lock.AcquireTimeoutMs)
	viper.SetDefault("lock.retry_interval_ms", defaults.Lock.RetryIntervalMs)
	viper.SetDefault("lock.heartbeat_interval_ms", defaults.Lock.HeartbeatIntervalMs)
	viper.SetDefault("lock.staleness_threshold_ms", defaults.Lock.StalenessThresholdMs)

	// Remote defaults
	viper.SetDefault("remote.enabled", defaults.Remote.Enabled)
	viper.SetDefault("remote.dial_timeout_ms", defaults.Remote.DialTimeoutMs)

	// Title defaults
	viper.SetDefault("title.enabled", defaults.Title.Enabled)
	viper.SetDefault("title.fetch_timeout_ms", defaults.Title.FetchTimeoutMs)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "flist")
	}
	// Fall back to ~/.config/flist
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flist"
	}
	return filepath.Join(home, ".config", "flist")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
