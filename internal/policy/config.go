package policy

import (
	"fmt"
	"strings"
)

// RoleGateConfig describes one role-gated route family.
type RoleGateConfig struct {
	// Prefix is the gated path prefix.
	Prefix string `yaml:"prefix" json:"prefix"`

	// Roles is the non-empty set of roles allowed under the prefix.
	Roles []string `yaml:"roles" json:"roles"`
}

// Config describes the path-policy registries. The registries are
// consumed once at startup; changing the config after the policy is
// built has no effect.
type Config struct {
	// PublicPrefixes is the list of access-open path prefixes.
	PublicPrefixes []string `yaml:"publicPrefixes" json:"publicPrefixes"`

	// RoleGates is the ordered list of role-gated prefixes. Earlier
	// entries take priority when prefixes overlap.
	RoleGates []RoleGateConfig `yaml:"roleGates" json:"roleGates"`
}

// DefaultConfig returns the default policy registries.
func DefaultConfig() *Config {
	public := make([]string, len(DefaultPublicPrefixes))
	copy(public, DefaultPublicPrefixes)

	gates := make([]RoleGateConfig, len(DefaultRoleGates))
	copy(gates, DefaultRoleGates)

	return &Config{
		PublicPrefixes: public,
		RoleGates:      gates,
	}
}

// Validate validates the policy configuration.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("policy config is nil")
	}

	for _, prefix := range c.PublicPrefixes {
		if err := validatePrefix(prefix); err != nil {
			return fmt.Errorf("public prefix %q: %w", prefix, err)
		}
	}

	for i, gate := range c.RoleGates {
		if err := validatePrefix(gate.Prefix); err != nil {
			return fmt.Errorf("role gate %d: prefix %q: %w", i, gate.Prefix, err)
		}
		if len(gate.Roles) == 0 {
			return fmt.Errorf("role gate %d: prefix %q: role set must not be empty", i, gate.Prefix)
		}
		for _, role := range gate.Roles {
			if role == "" {
				return fmt.Errorf("role gate %d: prefix %q: empty role identifier", i, gate.Prefix)
			}
		}
		// A gated prefix that the public set already matches would let
		// AllowedRoles contradict IsPublic.
		for _, public := range c.PublicPrefixes {
			if strings.HasPrefix(gate.Prefix, public) {
				return fmt.Errorf("role gate %d: prefix %q overlaps public prefix %q", i, gate.Prefix, public)
			}
		}
	}

	return nil
}

// validatePrefix checks the basic shape of a path prefix.
func validatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("must not be empty")
	}
	if !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("must start with '/'")
	}
	if strings.ContainsRune(prefix, '?') {
		return fmt.Errorf("must not contain a query component")
	}
	return nil
}

// PolicyOption is a functional option for PathPolicy construction.
type PolicyOption func(*PathPolicy)

// WithMetrics sets the metrics used to record classification decisions.
func WithMetrics(metrics *Metrics) PolicyOption {
	return func(p *PathPolicy) {
		p.metrics = metrics
	}
}

// New builds an immutable PathPolicy from the configuration. The
// registries are copied, so later mutation of the config does not leak
// into the policy.
func New(config *Config, opts ...PolicyOption) (*PathPolicy, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &PathPolicy{
		public: make([]string, len(config.PublicPrefixes)),
		gates:  make([]roleGate, 0, len(config.RoleGates)),
	}
	copy(p.public, config.PublicPrefixes)

	for _, gate := range config.RoleGates {
		p.gates = append(p.gates, roleGate{
			prefix: gate.Prefix,
			roles:  NewRoleSet(gate.Roles...),
		})
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.metrics != nil {
		p.metrics.SetRegistrySizes(len(p.public), len(p.gates))
	}

	return p, nil
}
