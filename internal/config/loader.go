package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings. Secrets are
// expected to arrive this way in production deployments.
const (
	EnvAuthSecret  = "GATEWAY_AUTH_SECRET"
	EnvJWKSURL     = "GATEWAY_AUTH_JWKS_URL"
	EnvSigningKey  = "GATEWAY_SIGNING_KEY"
	EnvUpstreamURL = "GATEWAY_UPSTREAM_URL"
	EnvLogLevel    = "GATEWAY_LOG_LEVEL"
)

// Load reads, parses, and validates the gateway configuration file.
// File values are applied on top of DefaultConfig, then environment
// overrides are applied on top of the file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path is empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvAuthSecret); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv(EnvJWKSURL); v != "" {
		cfg.Auth.JWKSURL = v
	}
	if v := os.Getenv(EnvSigningKey); v != "" {
		cfg.Signing.Key = v
		cfg.Signing.Enabled = true
	}
	if v := os.Getenv(EnvUpstreamURL); v != "" {
		cfg.Upstream.UpstreamURL = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
}
