// Package config handles loading and validating gateway.yaml.
// The gateway runs with zero config (sensible defaults) unless
// gateway.yaml (or GATEWAY_CONFIG) is present.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MountConfig configures one of the gateway's two route mounts. Prefix is
// required by validate but is not read when routes are mounted: the router
// always serves the main mount at /api/v1/web and the experimental mount at
// /experimental/web.
type MountConfig struct {
	Prefix           string `yaml:"prefix"`
	EnforceExtension bool   `yaml:"enforce_extension"`
}

// Config represents the top-level gateway.yaml configuration.
type Config struct {
	Listen             string           `yaml:"listen"`
	MaxBlockingWait    time.Duration    `yaml:"max_blocking_wait"`
	MaxEntitySizeBytes int64            `yaml:"max_entity_size_bytes"`
	BodyReadTimeout    time.Duration    `yaml:"body_read_timeout"`
	CORSOrigins        []string         `yaml:"cors_origins"`
	InvokerAddr        string           `yaml:"invoker_addr"`
	InvokerTLS         InvokerTLSConfig `yaml:"invoker_tls"`
	DatabaseURL        string           `yaml:"database_url"`
	Main               MountConfig      `yaml:"main"`
	Experimental       MountConfig      `yaml:"experimental"`
}

// InvokerTLSConfig holds TLS settings for the connection to the invoker.
// Empty CACertFile means h2c (cleartext HTTP/2) is used.
type InvokerTLSConfig struct {
	CACertFile string `yaml:"ca_cert_file"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
}

// DefaultMaxBlockingWait is the invoker wait bound when not configured.
const DefaultMaxBlockingWait = 60 * time.Second

// DefaultMaxEntitySizeBytes is the request body size cap when not configured.
const DefaultMaxEntitySizeBytes = 1 << 20 // 1 MiB

// DefaultBodyReadTimeout is the default value of BodyReadTimeout. No
// request path reads BodyReadTimeout; the time spent reading a request
// body is bounded only by the HTTP server's fixed ReadTimeout in gatewayd.
const DefaultBodyReadTimeout = 5 * time.Second

// DefaultConfig returns the gateway's zero-config defaults.
func DefaultConfig() *Config {
	return &Config{
		Listen:             ":8080",
		MaxBlockingWait:    DefaultMaxBlockingWait,
		MaxEntitySizeBytes: DefaultMaxEntitySizeBytes,
		BodyReadTimeout:    DefaultBodyReadTimeout,
		InvokerAddr:        "localhost:8085",
		Main: MountConfig{
			Prefix:           "/api/v1/web",
			EnforceExtension: false,
		},
		Experimental: MountConfig{
			Prefix:           "/experimental/web",
			EnforceExtension: true,
		},
	}
}

// Load parses a gateway.yaml file and applies it over the defaults.
// If path is empty, returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ResolvePath finds the config file path.
// Priority: GATEWAY_CONFIG env var > ./gateway.yaml > "" (no config, defaults apply).
func ResolvePath() string {
	if p := os.Getenv("GATEWAY_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("gateway.yaml"); err == nil {
		return "gateway.yaml"
	}
	return ""
}

func (c *Config) validate() error {
	if c.MaxBlockingWait <= 0 {
		return fmt.Errorf("max_blocking_wait must be positive")
	}
	if c.MaxEntitySizeBytes <= 0 {
		return fmt.Errorf("max_entity_size_bytes must be positive")
	}
	if c.Main.Prefix == "" || c.Experimental.Prefix == "" {
		return fmt.Errorf("main and experimental prefixes are required")
	}
	return nil
}
