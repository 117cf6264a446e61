package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopkg.in/yaml.v3"
)

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{
			name:   "default config",
			config: DefaultConfig(),
		},
		{
			name:   "empty config",
			config: &Config{},
		},
		{
			name: "empty public prefix",
			config: &Config{
				PublicPrefixes: []string{""},
			},
			wantErr: "must not be empty",
		},
		{
			name: "public prefix without leading slash",
			config: &Config{
				PublicPrefixes: []string{"terms"},
			},
			wantErr: "must start with '/'",
		},
		{
			name: "public prefix with query component",
			config: &Config{
				PublicPrefixes: []string{"/terms?x=1"},
			},
			wantErr: "must not contain a query component",
		},
		{
			name: "role gate with empty role set",
			config: &Config{
				RoleGates: []RoleGateConfig{
					{Prefix: "/staff"},
				},
			},
			wantErr: "role set must not be empty",
		},
		{
			name: "role gate with empty role identifier",
			config: &Config{
				RoleGates: []RoleGateConfig{
					{Prefix: "/staff", Roles: []string{"ADMIN", ""}},
				},
			},
			wantErr: "empty role identifier",
		},
		{
			name: "role gate overlapping a public prefix",
			config: &Config{
				PublicPrefixes: []string{"/terms"},
				RoleGates: []RoleGateConfig{
					{Prefix: "/terms-internal", Roles: []string{"ADMIN"}},
				},
			},
			wantErr: "overlaps public prefix",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.config.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate_Nil(t *testing.T) {
	t.Parallel()

	var cfg *Config
	assert.Error(t, cfg.Validate())
}

func TestNew_NilConfigUsesDefaults(t *testing.T) {
	t.Parallel()

	p, err := New(nil)
	require.NoError(t, err)

	assert.True(t, p.IsPublic("/auth/login"))
	assert.Equal(t, []string{"ADMIN"}, p.AllowedRoles("/admin").Roles())
}

func TestNew_InvalidConfig(t *testing.T) {
	t.Parallel()

	p, err := New(&Config{PublicPrefixes: []string{"bad"}})
	assert.Error(t, err)
	assert.Nil(t, p)
}

func TestDefaultConfig_Registry(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	assert.Len(t, cfg.PublicPrefixes, 18)
	require.Len(t, cfg.RoleGates, 2)
	assert.Equal(t, "/staff", cfg.RoleGates[0].Prefix)
	assert.Equal(t, []string{"ANALYST", "ADMIN"}, cfg.RoleGates[0].Roles)
	assert.Equal(t, "/admin", cfg.RoleGates[1].Prefix)
	assert.Equal(t, []string{"ADMIN"}, cfg.RoleGates[1].Roles)
}

func TestConfig_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	raw := `
publicPrefixes:
  - /auth/login
  - /terms
roleGates:
  - prefix: /staff
    roles: [ANALYST, ADMIN]
  - prefix: /admin
    roles: [ADMIN]
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))
	require.NoError(t, cfg.Validate())

	p, err := New(&cfg)
	require.NoError(t, err)
	assert.True(t, p.IsPublic("/terms-and-conditions"))
	assert.Equal(t, []string{"ADMIN", "ANALYST"}, p.AllowedRoles("/staff").Roles())
}
