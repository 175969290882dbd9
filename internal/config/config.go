// Package config loads the dashboard's YAML configuration: where each
// config type's logs live, the fallback capital table for old runs, the
// trading engine instance registry, and optional archive/tick store DSNs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full dashboard configuration.
type Config struct {
	Server    ServerConfig              `yaml:"server"`
	Sources   map[string]SourceConfig   `yaml:"sources"`
	Capital   CapitalConfig             `yaml:"capital"`
	Instances map[string]InstanceConfig `yaml:"instances"`
	Archive   ArchiveConfig             `yaml:"archive"`
	TickStore TickStoreConfig           `yaml:"tick_store"`
	Cache     CacheConfig               `yaml:"cache"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr       string `yaml:"addr"`
	AdminToken string `yaml:"admin_token"`
}

// SourceConfig describes where one config type's logs live. Exactly one
// of Path or Endpoint is set: Path reads the local filesystem, Endpoint
// reads an HTTP object store bucket.
type SourceConfig struct {
	Path     string `yaml:"path"`
	Endpoint string `yaml:"endpoint"`
}

// CapitalConfig carries the fallback capital table applied to sessions
// that predate capital being recorded in performance snapshots. Keyed by
// config type; sessions whose snapshot carries capital never consult it.
type CapitalConfig struct {
	Fallback map[string]float64 `yaml:"fallback"`
}

// InstanceConfig is one live trading engine instance reachable through
// the admin relay.
type InstanceConfig struct {
	URL string `yaml:"url"`
}

// ArchiveConfig configures the optional Postgres summary archive.
type ArchiveConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
}

// TickStoreConfig configures the optional ClickHouse tick store.
type TickStoreConfig struct {
	ClickhouseDSN string `yaml:"clickhouse_dsn"`
}

// CacheConfig overrides the per-operation cache TTLs, in seconds. Zero
// values keep the defaults (live 5s, summaries 30s, listings 5m).
type CacheConfig struct {
	LiveTTLSeconds     int `yaml:"live_ttl_seconds"`
	SummaryTTLSeconds  int `yaml:"summary_ttl_seconds"`
	ListingsTTLSeconds int `yaml:"listings_ttl_seconds"`
}

// LiveTTL returns the configured live-state TTL, or zero when unset.
func (c CacheConfig) LiveTTL() time.Duration { return time.Duration(c.LiveTTLSeconds) * time.Second }

// SummaryTTL returns the configured summary TTL, or zero when unset.
func (c CacheConfig) SummaryTTL() time.Duration {
	return time.Duration(c.SummaryTTLSeconds) * time.Second
}

// ListingsTTL returns the configured listings TTL, or zero when unset.
func (c CacheConfig) ListingsTTL() time.Duration {
	return time.Duration(c.ListingsTTLSeconds) * time.Second
}

// Default values applied when fields are absent.
const (
	DefaultAddr = ":8080"
)

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML config bytes.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Capital.Fallback == nil {
		cfg.Capital.Fallback = map[string]float64{}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("config: at least one source is required")
	}
	for name, src := range c.Sources {
		if src.Path == "" && src.Endpoint == "" {
			return fmt.Errorf("config: source %q needs a path or an endpoint", name)
		}
		if src.Path != "" && src.Endpoint != "" {
			return fmt.Errorf("config: source %q has both a path and an endpoint", name)
		}
	}
	for name, inst := range c.Instances {
		if inst.URL == "" {
			return fmt.Errorf("config: instance %q needs a url", name)
		}
	}
	return nil
}
