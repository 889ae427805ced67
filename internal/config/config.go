// Package config loads and validates the scanner configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	General   GeneralConfig   `yaml:"general"`
	Discovery DiscoveryConfig `yaml:"discovery"`
	Polling   PollingConfig   `yaml:"polling"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Retention RetentionConfig `yaml:"retention"`
	Storage   StorageConfig   `yaml:"storage"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type GeneralConfig struct {
	LogLevel  string `yaml:"log_level"`  // trace|debug|info|warn|error
	LogFormat string `yaml:"log_format"` // json|console
}

type DiscoveryConfig struct {
	Endpoints []string `yaml:"endpoints"`
	// The discovery interval adapts between min and max depending on
	// how much the pool list changes per cycle.
	MinIntervalSecs  int `yaml:"min_interval_secs"`
	MaxIntervalSecs  int `yaml:"max_interval_secs"`
	RetryBackoffSecs int `yaml:"retry_backoff_secs"`
}

type PollingConfig struct {
	IntervalSecs    int     `yaml:"interval_secs"`
	LookbackHours   int     `yaml:"lookback_hours"`
	VolumeFloorUSD  float64 `yaml:"volume_floor_usd"`
	BatchLimit      int     `yaml:"batch_limit"`
	RateLimitCalls  int     `yaml:"rate_limit_calls"`
	RateLimitSecs   int     `yaml:"rate_limit_secs"`
	MaxDeviationPct float64 `yaml:"max_deviation_pct"`
	PriceEpsilon    float64 `yaml:"price_epsilon"`
}

type ScoringConfig struct {
	WindowSize int `yaml:"window_size"`
}

type RetentionConfig struct {
	MaxAgeDays        int `yaml:"max_age_days"`
	PruneIntervalSecs int `yaml:"prune_interval_secs"`
}

type StorageConfig struct {
	// Empty DSNs select the in-memory backends.
	PostgresDSN   string `yaml:"postgres_dsn"`
	ClickHouseDSN string `yaml:"clickhouse_dsn"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads and parses a YAML configuration file. Environment
// variables in the file are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every default applied, suitable
// for running without a config file.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.General.LogLevel == "" {
		cfg.General.LogLevel = "info"
	}
	if cfg.General.LogFormat == "" {
		cfg.General.LogFormat = "console"
	}

	if cfg.Discovery.MinIntervalSecs == 0 {
		cfg.Discovery.MinIntervalSecs = 30
	}
	if cfg.Discovery.MaxIntervalSecs == 0 {
		cfg.Discovery.MaxIntervalSecs = 120
	}
	if cfg.Discovery.RetryBackoffSecs == 0 {
		cfg.Discovery.RetryBackoffSecs = 2
	}

	if cfg.Polling.IntervalSecs == 0 {
		cfg.Polling.IntervalSecs = 300
	}
	if cfg.Polling.LookbackHours == 0 {
		cfg.Polling.LookbackHours = 24
	}
	if cfg.Polling.VolumeFloorUSD == 0 {
		cfg.Polling.VolumeFloorUSD = 100
	}
	if cfg.Polling.BatchLimit == 0 {
		cfg.Polling.BatchLimit = 200
	}
	if cfg.Polling.RateLimitCalls == 0 {
		cfg.Polling.RateLimitCalls = 300
	}
	if cfg.Polling.RateLimitSecs == 0 {
		cfg.Polling.RateLimitSecs = 60
	}
	if cfg.Polling.MaxDeviationPct == 0 {
		cfg.Polling.MaxDeviationPct = 30
	}
	if cfg.Polling.PriceEpsilon == 0 {
		cfg.Polling.PriceEpsilon = 1e-9
	}

	if cfg.Scoring.WindowSize == 0 {
		cfg.Scoring.WindowSize = 12
	}

	if cfg.Retention.MaxAgeDays == 0 {
		cfg.Retention.MaxAgeDays = 7
	}
	if cfg.Retention.PruneIntervalSecs == 0 {
		cfg.Retention.PruneIntervalSecs = 3600
	}

	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9090"
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	switch c.General.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.General.LogLevel)
	}
	if c.Discovery.MinIntervalSecs > c.Discovery.MaxIntervalSecs {
		return fmt.Errorf("discovery min_interval_secs %d exceeds max_interval_secs %d",
			c.Discovery.MinIntervalSecs, c.Discovery.MaxIntervalSecs)
	}
	if c.Polling.BatchLimit < 0 || c.Polling.BatchLimit > 200 {
		return fmt.Errorf("polling batch_limit %d out of range [0,200]", c.Polling.BatchLimit)
	}
	if c.Polling.RateLimitCalls < 1 {
		return fmt.Errorf("polling rate_limit_calls must be positive")
	}
	if (c.Storage.PostgresDSN == "") != (c.Storage.ClickHouseDSN == "") {
		return fmt.Errorf("postgres_dsn and clickhouse_dsn must be set together")
	}
	return nil
}

// Persistent reports whether the SQL backends are configured.
func (c *Config) Persistent() bool {
	return c.Storage.PostgresDSN != ""
}

// Duration accessors.

func (c *DiscoveryConfig) MinInterval() time.Duration {
	return time.Duration(c.MinIntervalSecs) * time.Second
}

func (c *DiscoveryConfig) MaxInterval() time.Duration {
	return time.Duration(c.MaxIntervalSecs) * time.Second
}

func (c *DiscoveryConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffSecs) * time.Second
}

func (c *PollingConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSecs) * time.Second
}

func (c *PollingConfig) Lookback() time.Duration {
	return time.Duration(c.LookbackHours) * time.Hour
}

func (c *PollingConfig) RateLimitPeriod() time.Duration {
	return time.Duration(c.RateLimitSecs) * time.Second
}

func (c *RetentionConfig) MaxAge() time.Duration {
	return time.Duration(c.MaxAgeDays) * 24 * time.Hour
}

func (c *RetentionConfig) PruneInterval() time.Duration {
	return time.Duration(c.PruneIntervalSecs) * time.Second
}
