package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/canal-etico/gateway/internal/observability"
)

// Verifier verifies identity tokens.
type Verifier interface {
	// Verify verifies a raw token and returns the identity it carries.
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Config holds token verification configuration.
type Config struct {
	// Issuer is the expected token issuer. Empty disables the check.
	Issuer string `yaml:"issuer"`

	// Audience is the expected audience. Empty disables the check.
	Audience string `yaml:"audience"`

	// Secret is the shared HS256 secret. Mutually exclusive with
	// JWKSURL.
	Secret string `yaml:"secret"`

	// JWKSURL is the remote JWKS endpoint for asymmetric keys.
	JWKSURL string `yaml:"jwksUrl"`

	// RolesClaim is the claim carrying role identifiers. Defaults to
	// "roles".
	RolesClaim string `yaml:"rolesClaim"`

	// ClockSkew is the allowed clock skew when validating expiry.
	ClockSkew time.Duration `yaml:"clockSkew"`
}

// Validate validates the verification configuration.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("auth config is nil")
	}
	if c.Secret == "" && c.JWKSURL == "" {
		return fmt.Errorf("either secret or jwksUrl must be set")
	}
	if c.Secret != "" && c.JWKSURL != "" {
		return fmt.Errorf("secret and jwksUrl are mutually exclusive")
	}
	return nil
}

// GetRolesClaim returns the effective roles claim name.
func (c *Config) GetRolesClaim() string {
	if c.RolesClaim != "" {
		return c.RolesClaim
	}
	return "roles"
}

// jwtVerifier implements Verifier on top of jwx.
type jwtVerifier struct {
	config *Config
	cache  *jwk.Cache
	logger observability.Logger
}

// VerifierOption is a functional option for the verifier.
type VerifierOption func(*jwtVerifier)

// WithVerifierLogger sets the logger.
func WithVerifierLogger(logger observability.Logger) VerifierOption {
	return func(v *jwtVerifier) {
		v.logger = logger
	}
}

// NewVerifier creates a new JWT verifier.
func NewVerifier(ctx context.Context, config *Config, opts ...VerifierOption) (Verifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	v := &jwtVerifier{
		config: config,
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(v)
	}

	if config.JWKSURL != "" {
		cache := jwk.NewCache(ctx)
		if err := cache.Register(config.JWKSURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
			return nil, fmt.Errorf("failed to register JWKS endpoint: %w", err)
		}
		v.cache = cache
	}

	return v, nil
}

// Verify implements Verifier.
func (v *jwtVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	opts, err := v.parseOptions(ctx)
	if err != nil {
		return nil, err
	}

	parsed, err := jwt.Parse([]byte(token), opts...)
	if err != nil {
		v.logger.Debug("token verification failed", observability.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return &Identity{
		Subject: parsed.Subject(),
		Issuer:  parsed.Issuer(),
		Roles:   extractRoles(parsed, v.config.GetRolesClaim()),
	}, nil
}

// parseOptions builds the jwt parse options for the configured keys and
// expected claims.
func (v *jwtVerifier) parseOptions(ctx context.Context) ([]jwt.ParseOption, error) {
	opts := []jwt.ParseOption{jwt.WithValidate(true)}

	if v.cache != nil {
		keySet, err := v.cache.Get(ctx, v.config.JWKSURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
		}
		opts = append(opts, jwt.WithKeySet(keySet))
	} else {
		opts = append(opts, jwt.WithKey(jwa.HS256, []byte(v.config.Secret)))
	}

	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.config.Audience))
	}
	if v.config.ClockSkew > 0 {
		opts = append(opts, jwt.WithAcceptableSkew(v.config.ClockSkew))
	}

	return opts, nil
}

// extractRoles reads the roles claim, tolerating the JSON shapes a
// token may carry: a string array or a single string.
func extractRoles(token jwt.Token, claim string) []string {
	value, ok := token.Get(claim)
	if !ok {
		return nil
	}

	switch v := value.(type) {
	case []string:
		return v
	case []interface{}:
		roles := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				roles = append(roles, s)
			}
		}
		return roles
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// Ensure jwtVerifier implements Verifier.
var _ Verifier = (*jwtVerifier)(nil)
