// Package config handles configuration loading for the market-data engine.
// It supports YAML config files with environment variable overrides; a
// .env file in the working directory is loaded into the environment first.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g.
// MARKETDATA_CACHE_SNAPSHOT_TTL=10m.
const EnvPrefix = "MARKETDATA"

// Config represents the complete application configuration.
type Config struct {
	Sources  SourcesConfig  `mapstructure:"sources"  yaml:"sources"`
	Cache    CacheConfig    `mapstructure:"cache"    yaml:"cache"`
	Resolver ResolverConfig `mapstructure:"resolver" yaml:"resolver"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Watch    WatchConfig    `mapstructure:"watch"    yaml:"watch"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// SourcesConfig holds per-adapter settings.
type SourcesConfig struct {
	NSE       SourceConfig `mapstructure:"nse"       yaml:"nse"`
	Yahoo     SourceConfig `mapstructure:"yahoo"     yaml:"yahoo"`
	Screener  SourceConfig `mapstructure:"screener"  yaml:"screener"`
	CoinGecko SourceConfig `mapstructure:"coingecko" yaml:"coingecko"`
}

// SourceConfig configures one source adapter.
type SourceConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey  string        `mapstructure:"api_key"  yaml:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"  yaml:"timeout"`
	Rate    int           `mapstructure:"rate"     yaml:"rate"` // requests per second
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl" yaml:"snapshot_ttl"`
	ChartTTL    time.Duration `mapstructure:"chart_ttl"    yaml:"chart_ttl"`
	Shards      int           `mapstructure:"shards"       yaml:"shards"`
}

// ResolverConfig holds resolution engine settings.
type ResolverConfig struct {
	MaxConcurrency int   `mapstructure:"max_concurrency" yaml:"max_concurrency"`
	Seed           int64 `mapstructure:"seed"            yaml:"seed"` // 0 = time-seeded
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// WatchConfig holds watchlist refresher settings.
type WatchConfig struct {
	Schedule string   `mapstructure:"schedule" yaml:"schedule"` // cron spec
	Symbols  []string `mapstructure:"symbols"  yaml:"symbols"`
	File     string   `mapstructure:"file"     yaml:"file"` // YAML watchlist
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.marketdata/config.yaml (home directory)
//  3. /etc/marketdata/config.yaml (system)
//
// Environment variables override config file values.
// Format: MARKETDATA_<SECTION>_<KEY>, e.g., MARKETDATA_API_PORT
func Load() (*Config, error) {
	loadDotEnv()
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".marketdata"))
	v.AddConfigPath("/etc/marketdata")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotEnv loads ./.env into the process environment. Variables already
// set are not overwritten and a missing file is ignored.
func loadDotEnv() {
	_ = godotenv.Load()
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Source adapters
	v.SetDefault("sources.nse.base_url", "https://www.nseindia.com")
	v.SetDefault("sources.nse.timeout", 10*time.Second)
	v.SetDefault("sources.nse.rate", 3)
	v.SetDefault("sources.nse.api_key", "")

	v.SetDefault("sources.yahoo.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("sources.yahoo.timeout", 12*time.Second)
	v.SetDefault("sources.yahoo.rate", 5)
	v.SetDefault("sources.yahoo.api_key", "")

	v.SetDefault("sources.screener.base_url", "https://www.screener.in")
	v.SetDefault("sources.screener.timeout", 15*time.Second)
	v.SetDefault("sources.screener.rate", 1)
	v.SetDefault("sources.screener.api_key", "")

	v.SetDefault("sources.coingecko.base_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("sources.coingecko.timeout", 8*time.Second)
	v.SetDefault("sources.coingecko.rate", 2)
	v.SetDefault("sources.coingecko.api_key", "")

	// Cache
	v.SetDefault("cache.snapshot_ttl", 5*time.Minute)
	v.SetDefault("cache.chart_ttl", 2*time.Minute)
	v.SetDefault("cache.shards", 32)

	// Resolver
	v.SetDefault("resolver.max_concurrency", 8)
	v.SetDefault("resolver.seed", 0)

	// API
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Watchlist
	v.SetDefault("watch.schedule", "@every 1m")
	v.SetDefault("watch.symbols", []string{})
	v.SetDefault("watch.file", "")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv reads provider keys under their conventional names when
// the prefixed variable is not set.
func overrideFromEnv(cfg *Config) {
	if cfg.Sources.CoinGecko.APIKey == "" {
		if key := os.Getenv("COINGECKO_API_KEY"); key != "" {
			cfg.Sources.CoinGecko.APIKey = key
		}
	}
	if port := os.Getenv("PORT"); port != "" && os.Getenv(EnvPrefix+"_API_PORT") == "" {
		var p int
		if _, err := fmt.Sscanf(port, "%d", &p); err == nil && p > 0 {
			cfg.API.Port = p
		}
	}
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Cache.SnapshotTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.snapshot_ttl must be positive, got %s", c.Cache.SnapshotTTL))
	}
	if c.Cache.ChartTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.chart_ttl must be positive, got %s", c.Cache.ChartTTL))
	}
	if c.Resolver.MaxConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("resolver.max_concurrency must be positive, got %d", c.Resolver.MaxConcurrency))
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port out of range: %d", c.API.Port))
	}
	return errors.Join(errs...)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
