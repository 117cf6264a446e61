package config

import (
	"fmt"
	"time"

	"github.com/canal-etico/gateway/internal/auth"
	"github.com/canal-etico/gateway/internal/observability"
	"github.com/canal-etico/gateway/internal/policy"
	"github.com/canal-etico/gateway/internal/proxy"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// Validate checks the server configuration.
func (c *ServerConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Port)
	}
	return nil
}

// RateLimitConfig holds edge rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

// Validate checks the rate limit configuration.
func (c *RateLimitConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.RequestsPerSecond <= 0 {
		return fmt.Errorf("rate limit requestsPerSecond must be positive")
	}
	if c.Burst < 0 {
		return fmt.Errorf("rate limit burst must not be negative")
	}
	return nil
}

// SigningConfig holds origin header signing settings.
type SigningConfig struct {
	// Enabled toggles HMAC signing of the identity headers stamped on
	// forwarded requests.
	Enabled bool `yaml:"enabled"`

	// Key is the shared HMAC key. Usually injected via
	// GATEWAY_SIGNING_KEY rather than the config file.
	Key string `yaml:"key"`
}

// Validate checks the signing configuration.
func (c *SigningConfig) Validate() error {
	if c.Enabled && c.Key == "" {
		return fmt.Errorf("signing key is required when signing is enabled")
	}
	return nil
}

// Config is the root gateway configuration.
type Config struct {
	Server    ServerConfig               `yaml:"server"`
	Log       observability.LogConfig    `yaml:"log"`
	Tracing   observability.TracerConfig `yaml:"tracing"`
	RateLimit RateLimitConfig            `yaml:"rateLimit"`
	Auth      auth.Config                `yaml:"auth"`
	Upstream  proxy.Config               `yaml:"upstream"`
	Signing   SigningConfig              `yaml:"signing"`
	Policy    *policy.Config             `yaml:"policy"`
}

// DefaultConfig returns the default gateway configuration. The policy
// section defaults to the built-in registries.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log: observability.DefaultLogConfig(),
		Tracing: observability.TracerConfig{
			ServiceName:  "gateway",
			SamplingRate: 1.0,
		},
		RateLimit: RateLimitConfig{
			Enabled:           true,
			RequestsPerSecond: 100,
			Burst:             200,
		},
		Upstream: proxy.DefaultConfig(),
		Policy:   policy.DefaultConfig(),
	}
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rateLimit: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Upstream.Validate(); err != nil {
		return fmt.Errorf("upstream: %w", err)
	}
	if err := c.Signing.Validate(); err != nil {
		return fmt.Errorf("signing: %w", err)
	}
	if c.Policy != nil {
		if err := c.Policy.Validate(); err != nil {
			return fmt.Errorf("policy: %w", err)
		}
	}
	return nil
}
