package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/shopassist/internal/domain"
)

type Config struct {
	Port string `yaml:"port"`

	// ReplyDelay is the simulated time the assistant takes to answer.
	ReplyDelay           time.Duration         `yaml:"reply_delay"`
	FilterReadMode       domain.FilterReadMode `yaml:"filter_read_mode"`
	CancelPendingOnReset bool                  `yaml:"cancel_pending_on_reset"`

	// CatalogPath is a YAML catalog file; empty means the built-in sample catalog.
	CatalogPath  string `yaml:"catalog_path"`
	WatchCatalog bool   `yaml:"watch_catalog"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // "json" or "console"
}

func Default() *Config {
	return &Config{
		Port:           "8080",
		ReplyDelay:     1500 * time.Millisecond,
		FilterReadMode: domain.FilterReadLive,
		LogLevel:       "info",
		LogFormat:      "json",
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Load builds the config from defaults, then the YAML file named by
// SHOPASSIST_CONFIG (if any), then SHOPASSIST_* env vars.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("SHOPASSIST_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnv("SHOPASSIST_PORT", cfg.Port)
	cfg.CatalogPath = getEnv("SHOPASSIST_CATALOG_PATH", cfg.CatalogPath)
	cfg.WatchCatalog = getBoolEnv("SHOPASSIST_WATCH_CATALOG", cfg.WatchCatalog)
	cfg.FilterReadMode = domain.FilterReadMode(getEnv("SHOPASSIST_FILTER_READ_MODE", string(cfg.FilterReadMode)))
	cfg.CancelPendingOnReset = getBoolEnv("SHOPASSIST_CANCEL_PENDING_ON_RESET", cfg.CancelPendingOnReset)
	cfg.LogLevel = getEnv("SHOPASSIST_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("SHOPASSIST_LOG_FORMAT", cfg.LogFormat)

	delay, err := getDurationEnv("SHOPASSIST_REPLY_DELAY", cfg.ReplyDelay)
	if err != nil {
		return nil, err
	}
	cfg.ReplyDelay = delay

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	if !c.FilterReadMode.Valid() {
		return fmt.Errorf("filter_read_mode must be %q or %q, got %q",
			domain.FilterReadLive, domain.FilterReadSnapshot, c.FilterReadMode)
	}
	if c.ReplyDelay < 0 {
		return fmt.Errorf("reply_delay must not be negative, got %s", c.ReplyDelay)
	}
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("port is required")
	}
	if c.WatchCatalog && c.CatalogPath == "" {
		return fmt.Errorf("watch_catalog needs catalog_path")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
