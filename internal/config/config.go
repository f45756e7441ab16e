// Package config loads and validates harvester configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Input   InputConfig   `mapstructure:"input"`
	Store   StoreConfig   `mapstructure:"store"`
	Palette PaletteConfig `mapstructure:"palette"`
	Reports ReportsConfig `mapstructure:"reports"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Dedup   DedupConfig   `mapstructure:"dedup"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// InputConfig locates the dataset of site identifiers.
type InputConfig struct {
	Path   string `mapstructure:"path"`
	Column string `mapstructure:"column"`
}

// StoreConfig sets the directory logos are written to.
type StoreConfig struct {
	Dir string `mapstructure:"dir"`
}

// PaletteConfig sets the directory palette strips are written to.
type PaletteConfig struct {
	Dir string `mapstructure:"dir"`
}

// ReportsConfig sets the directory analysis reports are written to.
type ReportsConfig struct {
	Dir string `mapstructure:"dir"`
}

// FetchConfig governs the bounded fetch stage.
type FetchConfig struct {
	Concurrency            int     `mapstructure:"concurrency"`
	TimeoutSeconds         int     `mapstructure:"timeout_seconds"`
	DownloadTimeoutSeconds int     `mapstructure:"download_timeout_seconds"`
	UserAgent              string  `mapstructure:"user_agent"`
	PerHostRPS             float64 `mapstructure:"per_host_rps"`
}

// DedupConfig governs the similarity deduplicator.
type DedupConfig struct {
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	PrefixLength        int     `mapstructure:"prefix_length"`
}

// ServerConfig controls the embedded observability server.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LOGOHARVEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.path", "data/websites.csv")
	v.SetDefault("input.column", "domain")
	v.SetDefault("store.dir", "logos")
	v.SetDefault("palette.dir", "palettes")
	v.SetDefault("reports.dir", "reports")
	v.SetDefault("fetch.concurrency", 10)
	v.SetDefault("fetch.timeout_seconds", 20)
	v.SetDefault("fetch.download_timeout_seconds", 5)
	v.SetDefault("fetch.user_agent", "logoharvest/1.0")
	v.SetDefault("fetch.per_host_rps", 1)
	v.SetDefault("dedup.similarity_threshold", 0.49)
	v.SetDefault("dedup.prefix_length", 3)
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.port", 9090)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Input.Column == "" {
		return fmt.Errorf("input.column must be set")
	}
	if c.Store.Dir == "" {
		return fmt.Errorf("store.dir must be set")
	}
	if c.Fetch.Concurrency <= 0 {
		return fmt.Errorf("fetch.concurrency must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Dedup.SimilarityThreshold < 0 || c.Dedup.SimilarityThreshold > 1 {
		return fmt.Errorf("dedup.similarity_threshold must be in [0, 1]")
	}
	if c.Dedup.PrefixLength <= 0 {
		return fmt.Errorf("dedup.prefix_length must be > 0")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the server is enabled")
	}
	return nil
}

// FetchTimeout returns the page fetch budget as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// DownloadTimeout returns the logo download budget as a duration.
func (c Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Fetch.DownloadTimeoutSeconds) * time.Second
}
