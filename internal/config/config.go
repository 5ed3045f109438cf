package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/MrSnakeDoc/otot/internal/domain"
	"github.com/MrSnakeDoc/otot/internal/logger"
)

const appName = "otot"

type Config struct {
	PreferredBrowser string `toml:"preferred_browser"` // empty => system default
	DBPath           string `toml:"db_path"`           // empty => $XDG_DATA_HOME/otot/history.db
	LogLevel         string `toml:"log_level"`         // "debug" | "info" | "warn" | "error"
	PrettyLog        bool   `toml:"pretty_log"`        // true => zap dev (color), false => zap prod (JSON)
	MaxResults       int    `toml:"max_results"`       // rows printed by query/top, 0 = no limit

	Frecency FrecencyConfig `toml:"frecency"`
	Serve    ServeConfig    `toml:"serve"`
	Cache    CacheConfig    `toml:"cache"`
	Import   ImportConfig   `toml:"import"`
}

// FrecencyConfig holds the recency multipliers per age bucket.
type FrecencyConfig struct {
	Hour  float64 `toml:"hour"`  // age <= 1h
	Day   float64 `toml:"day"`   // age <= 24h
	Week  float64 `toml:"week"`  // age <= 7d
	Older float64 `toml:"older"` // anything older
}

// ServeConfig configures `otot serve`.
type ServeConfig struct {
	Listen          string   `toml:"listen"`           // ex: "127.0.0.1:7878"
	PruneInterval   Duration `toml:"prune_interval"`   // how often the pruner runs
	PruneAfter      Duration `toml:"prune_after"`      // records idle longer are deleted, 0 = never
	ShutdownTimeout Duration `toml:"shutdown_timeout"` // ex: 5s
	ImportInterval  Duration `toml:"import_interval"`  // re-import of [import] files, 0 = startup only
}

// CacheConfig configures the optional redis resolution cache (serve mode only).
type CacheConfig struct {
	RedisAddr      string   `toml:"redis_addr"` // empty => cache disabled
	RedisPassword  string   `toml:"redis_password"`
	RedisDB        int      `toml:"redis_db"`
	TTL            Duration `toml:"ttl"`
	ConnectTimeout Duration `toml:"connect_timeout"`
}

// ImportConfig points at Homepage files used by `otot import` and `otot serve`.
type ImportConfig struct {
	ServicesFile  string `toml:"services_file"`  // ex: /app/config/services.yaml
	BookmarksFile string `toml:"bookmarks_file"` // ex: /app/config/bookmarks.yaml
}

// Duration is a time.Duration written as "90s" / "24h" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:   "warn",
		PrettyLog:  true,
		MaxResults: 20,
		Frecency: FrecencyConfig{
			Hour:  4,
			Day:   2,
			Week:  0.5,
			Older: 0.25,
		},
		Serve: ServeConfig{
			Listen:          "127.0.0.1:7878",
			PruneInterval:   Duration{24 * time.Hour},
			ShutdownTimeout: Duration{5 * time.Second},
		},
		Cache: CacheConfig{
			TTL:            Duration{10 * time.Minute},
			ConnectTimeout: Duration{5 * time.Second},
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/otot/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// DefaultDBPath returns $XDG_DATA_HOME/otot/history.db.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, appName, "history.db")
}

// Load reads the configuration with priority:
//  1. custom path from --config (must exist)
//  2. DefaultPath() when present
//  3. built-in defaults
//
// Environment overrides are applied last. The path actually read is
// returned, empty when only defaults were used.
func Load(customPath string, log logger.Logger) (*Config, string, error) {
	cfg := Default()
	path := customPath

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, "", fmt.Errorf("failed to load config %s: %w", path, err)
		}
	} else {
		path = DefaultPath()
		_, err := toml.DecodeFile(path, cfg)
		switch {
		case err == nil:
		case errors.Is(err, os.ErrNotExist):
			log.Debug("no config file, using defaults", logger.String("path", path))
			path = ""
		default:
			return nil, "", fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	log.Debug("config loaded",
		logger.String("path", path),
		logger.String("db_path", cfg.ResolvedDBPath()),
		logger.String("log_level", cfg.LogLevel),
		logger.String("redis_addr", cfg.Cache.RedisAddr))

	return cfg, path, nil
}

// LoadFile reads path on top of the defaults without environment
// overrides, so that saving it back only persists what the file holds.
// A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays OTOT_* environment variables.
func (c *Config) applyEnv() {
	c.DBPath = getenv("OTOT_DB_PATH", c.DBPath)
	c.PreferredBrowser = getenv("OTOT_BROWSER", c.PreferredBrowser)
	c.LogLevel = getenv("OTOT_LOG_LEVEL", c.LogLevel)
	c.PrettyLog = mustBool("OTOT_PRETTY_LOG", c.PrettyLog)
	c.MaxResults = getenvInt("OTOT_MAX_RESULTS", c.MaxResults)
	c.Serve.Listen = getenv("OTOT_LISTEN", c.Serve.Listen)
	c.Serve.PruneAfter.Duration = mustDuration("OTOT_PRUNE_AFTER", c.Serve.PruneAfter.Duration)
	c.Cache.RedisAddr = getenv("OTOT_REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisPassword = getenv("OTOT_REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Import.ServicesFile = getenv("OTOT_SERVICES_FILE", c.Import.ServicesFile)
	c.Import.BookmarksFile = getenv("OTOT_BOOKMARKS_FILE", c.Import.BookmarksFile)
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("log_level: unknown level %q", c.LogLevel)
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("max_results must be >= 0, got %d", c.MaxResults)
	}
	if err := c.FrecencyPolicy().Validate(); err != nil {
		return fmt.Errorf("frecency: %w", err)
	}
	if c.Serve.PruneAfter.Duration < 0 {
		return fmt.Errorf("serve.prune_after must be >= 0, got %v", c.Serve.PruneAfter)
	}
	if c.Serve.PruneAfter.Duration > 0 && c.Serve.PruneInterval.Duration <= 0 {
		return fmt.Errorf("serve.prune_interval must be > 0 when prune_after is set, got %v", c.Serve.PruneInterval)
	}
	if c.Serve.ImportInterval.Duration < 0 {
		return fmt.Errorf("serve.import_interval must be >= 0, got %v", c.Serve.ImportInterval)
	}
	if c.Serve.ShutdownTimeout.Duration <= 0 {
		return fmt.Errorf("serve.shutdown_timeout must be > 0, got %v", c.Serve.ShutdownTimeout)
	}
	if c.Cache.RedisAddr != "" {
		if c.Cache.TTL.Duration <= 0 {
			return fmt.Errorf("cache.ttl must be > 0, got %v", c.Cache.TTL)
		}
		if c.Cache.ConnectTimeout.Duration <= 0 {
			return fmt.Errorf("cache.connect_timeout must be > 0, got %v", c.Cache.ConnectTimeout)
		}
	}
	return nil
}

// FrecencyPolicy builds the scoring policy from the [frecency] table.
func (c *Config) FrecencyPolicy() domain.FrecencyPolicy {
	f := c.Frecency
	return domain.NewFrecencyPolicy(f.Hour, f.Day, f.Week, f.Older)
}

// ResolvedDBPath returns DBPath or the platform default.
func (c *Config) ResolvedDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return DefaultDBPath()
}

// Save writes the configuration as TOML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync config file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close config file: %w", err)
	}
	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
