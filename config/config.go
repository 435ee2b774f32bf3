// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/artpar/copydata/core/topology"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Charm     CharmConfig         `yaml:"charm"`
	Relations []topology.Relation `yaml:"relations"`
	Store     StoreConfig         `yaml:"store"`
	Logging   LoggingConfig       `yaml:"logging"`
	Metrics   MetricsConfig       `yaml:"metrics"`
	Server    ServerConfig        `yaml:"server"`
}

// CharmConfig identifies the local unit.
type CharmConfig struct {
	App    string `yaml:"app"`
	Unit   string `yaml:"unit"`
	Leader bool   `yaml:"leader"`
}

// Local returns the topology view of the local unit.
func (c CharmConfig) Local() topology.Local {
	return topology.Local{App: c.App, Unit: c.Unit, Leader: c.Leader}
}

// StoreConfig selects the databag transport.
type StoreConfig struct {
	Driver      string        `yaml:"driver"`    // "memory", "sqlite" or "etcd"
	DSN         string        `yaml:"dsn"`       // sqlite database path
	Endpoints   []string      `yaml:"endpoints"` // etcd endpoints
	DialTimeout time.Duration `yaml:"dial_timeout"`
	Prefix      string        `yaml:"prefix"` // etcd key prefix
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // Enable /metrics endpoint
	Path    string `yaml:"path"`    // Custom path (default: /metrics)
}

// ServerConfig configures the inspection HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return finish(&cfg)
}

// LoadFromEnv creates configuration entirely from environment variables.
// Relations cannot be expressed this way, so the unit reports that it has
// no relation yet.
//
// Environment variables:
//
//	COPYDATA_APP              - Local application name (required)
//	COPYDATA_UNIT             - Local unit name (default: <app>/0)
//	COPYDATA_LEADER           - Whether the local unit is leader
//	COPYDATA_STORE_DRIVER     - memory, sqlite or etcd (default: memory)
//	COPYDATA_STORE_DSN        - sqlite path (default: copydata.db)
//	COPYDATA_STORE_ENDPOINTS  - comma separated etcd endpoints
//	COPYDATA_STORE_PREFIX     - etcd key prefix (default: /copydata)
//	COPYDATA_LOG_LEVEL        - Log level: debug, info, warn, error (default: info)
//	COPYDATA_LOG_FORMAT       - Log format: json or console (default: console)
//	COPYDATA_METRICS_ENABLED  - Enable /metrics endpoint
//	COPYDATA_SERVER_HOST      - Server host (default: 127.0.0.1)
//	COPYDATA_SERVER_PORT      - Server port (default: 8086)
func LoadFromEnv() (*Config, error) {
	return finish(&Config{})
}

// LoadWithFallback loads path if it exists and falls back to the
// environment otherwise.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	if HasEnvConfig() {
		return LoadFromEnv()
	}

	return nil, fmt.Errorf("no configuration found: provide config file or set COPYDATA_APP")
}

// HasEnvConfig returns true if essential environment variables are set.
func HasEnvConfig() bool {
	return os.Getenv("COPYDATA_APP") != ""
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)
	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies COPYDATA_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	// Charm identity
	if v := os.Getenv("COPYDATA_APP"); v != "" {
		cfg.Charm.App = v
	}
	if v := os.Getenv("COPYDATA_UNIT"); v != "" {
		cfg.Charm.Unit = v
	}
	if v := os.Getenv("COPYDATA_LEADER"); v != "" {
		cfg.Charm.Leader = parseBool(v)
	}

	// Store configuration
	if v := os.Getenv("COPYDATA_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("COPYDATA_STORE_DSN"); v != "" {
		cfg.Store.DSN = v
	}
	if v := os.Getenv("COPYDATA_STORE_ENDPOINTS"); v != "" {
		cfg.Store.Endpoints = splitList(v)
	}
	if v := os.Getenv("COPYDATA_STORE_DIAL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Store.DialTimeout = d
		}
	}
	if v := os.Getenv("COPYDATA_STORE_PREFIX"); v != "" {
		cfg.Store.Prefix = v
	}

	// Logging configuration
	if v := os.Getenv("COPYDATA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("COPYDATA_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	// Metrics configuration
	if v := os.Getenv("COPYDATA_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
	if v := os.Getenv("COPYDATA_METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}

	// Server configuration
	if v := os.Getenv("COPYDATA_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("COPYDATA_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func setDefaults(cfg *Config) {
	if cfg.Charm.Unit == "" && cfg.Charm.App != "" {
		cfg.Charm.Unit = cfg.Charm.App + "/0"
	}

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "memory"
	}
	if cfg.Store.DSN == "" {
		cfg.Store.DSN = "copydata.db"
	}
	if cfg.Store.DialTimeout == 0 {
		cfg.Store.DialTimeout = 5 * time.Second
	}
	if cfg.Store.Prefix == "" {
		cfg.Store.Prefix = "/copydata"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8086
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
}

func validate(cfg *Config) error {
	if cfg.Charm.App == "" {
		return fmt.Errorf("charm.app is required")
	}
	unit, err := topology.Parse(cfg.Charm.Unit)
	if err != nil || unit.Kind != topology.KindUnit {
		return fmt.Errorf("charm.unit must look like <app>/<n>, got %q", cfg.Charm.Unit)
	}
	if unit.AppName() != cfg.Charm.App {
		return fmt.Errorf("charm.unit %q does not belong to charm.app %q", cfg.Charm.Unit, cfg.Charm.App)
	}

	seen := make(map[string]bool, len(cfg.Relations))
	for i, rel := range cfg.Relations {
		if err := rel.Validate(); err != nil {
			return fmt.Errorf("relations[%d]: %w", i, err)
		}
		if seen[rel.Name] {
			return fmt.Errorf("relations[%d]: duplicate relation name %q", i, rel.Name)
		}
		seen[rel.Name] = true
		if _, ok := rel.RoleOf(cfg.Charm.App); !ok {
			return fmt.Errorf("relations[%d]: %q does not involve charm.app %q", i, rel.Name, cfg.Charm.App)
		}
	}

	switch cfg.Store.Driver {
	case "memory", "sqlite":
	case "etcd":
		if len(cfg.Store.Endpoints) == 0 {
			return fmt.Errorf("store.endpoints is required when store.driver is 'etcd'")
		}
	default:
		return fmt.Errorf("store.driver must be one of: memory, sqlite, etcd, got %q", cfg.Store.Driver)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" && cfg.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}

	return nil
}
