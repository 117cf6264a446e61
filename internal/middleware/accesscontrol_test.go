package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/canal-etico/gateway/internal/auth"
	"github.com/canal-etico/gateway/internal/policy"
	"github.com/canal-etico/gateway/internal/security"
)

// fakeVerifier maps raw tokens to identities.
type fakeVerifier struct {
	identities map[string]*auth.Identity
}

func (f *fakeVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	if identity, ok := f.identities[token]; ok {
		return identity, nil
	}
	return nil, auth.ErrInvalidToken
}

func newTestRouter(t *testing.T, signer security.Signer) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	p, err := policy.New(policy.DefaultConfig())
	require.NoError(t, err)

	verifier := &fakeVerifier{
		identities: map[string]*auth.Identity{
			"analyst-token": {Subject: "analyst-1", Roles: []string{"ANALYST"}},
			"admin-token":   {Subject: "admin-1", Roles: []string{"ADMIN"}},
			"citizen-token": {Subject: "citizen-1"},
		},
	}

	router := gin.New()
	router.Use(AccessControl(AccessControlConfig{
		Policy:   p,
		Verifier: verifier,
		Signer:   signer,
		Logger:   zap.NewNop(),
	}))
	router.NoRoute(func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return router
}

func perform(router *gin.Engine, method, target, token string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, nil)
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestAccessControl_PublicPathsPassWithoutToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)

	paths := []string{
		"/denuncia",
		"/denuncia/track/42",
		"/denuncia?ref=123",
		"/terms-and-conditions",
		"/actuator/health",
		"/auth/login?next=%2Fstaff",
	}
	for _, path := range paths {
		w := perform(router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNoContent, w.Code, "path %q", path)
	}
}

func TestAccessControl_ProtectedPathRequiresToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)

	w := perform(router, http.MethodGet, "/api/v1/cases", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authentication required")
}

func TestAccessControl_InvalidTokenRejected(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)

	w := perform(router, http.MethodGet, "/api/v1/cases", "forged-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")
}

func TestAccessControl_ProtectedPathAnyRole(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, nil)

	// A protected path without a role gate accepts any verified
	// identity, even one without roles.
	w := perform(router, http.MethodGet, "/api/v1/cases", "citizen-token")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAccessControl_RoleGates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		token  string
		status int
	}{
		{
			name:   "analyst can access staff",
			path:   "/staff/cases",
			token:  "analyst-token",
			status: http.StatusNoContent,
		},
		{
			name:   "admin can access staff",
			path:   "/staff/cases",
			token:  "admin-token",
			status: http.StatusNoContent,
		},
		{
			name:   "analyst cannot access admin",
			path:   "/admin/users",
			token:  "analyst-token",
			status: http.StatusForbidden,
		},
		{
			name:   "admin can access admin with query",
			path:   "/admin?x=1",
			token:  "admin-token",
			status: http.StatusNoContent,
		},
		{
			name:   "roleless identity cannot access staff",
			path:   "/staff/cases",
			token:  "citizen-token",
			status: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouter(t, nil)
			w := perform(router, http.MethodGet, tt.path, tt.token)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestAccessControl_StampsOriginHeaders(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)

	p, err := policy.New(policy.DefaultConfig())
	require.NoError(t, err)

	signer, err := security.NewHMACSigner([]byte("origin-key"))
	require.NoError(t, err)

	verifier := &fakeVerifier{
		identities: map[string]*auth.Identity{
			"admin-token": {Subject: "admin-1", Roles: []string{"ADMIN", "ANALYST"}},
		},
	}

	var seen http.Header
	router := gin.New()
	router.Use(AccessControl(AccessControlConfig{
		Policy:   p,
		Verifier: verifier,
		Signer:   signer,
	}))
	router.NoRoute(func(c *gin.Context) {
		seen = c.Request.Header.Clone()
		identity, ok := GetIdentity(c)
		require.True(t, ok)
		assert.Equal(t, "admin-1", identity.Subject)
		c.Status(http.StatusNoContent)
	})

	w := perform(router, http.MethodGet, "/admin/users", "admin-token")
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, "admin-1", seen.Get(security.HeaderGatewaySubject))
	assert.Equal(t, "ADMIN,ANALYST", seen.Get(security.HeaderGatewayRoles))
	assert.True(t, security.VerifySignature(
		[]byte("origin-key"),
		http.MethodGet, "/admin/users", "admin-1",
		seen.Get(security.HeaderGatewaySignature),
	))
}

func TestAccessControl_StripsSmuggledHeaders(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)

	p, err := policy.New(policy.DefaultConfig())
	require.NoError(t, err)

	var seen http.Header
	router := gin.New()
	router.Use(AccessControl(AccessControlConfig{
		Policy:   p,
		Verifier: &fakeVerifier{},
	}))
	router.NoRoute(func(c *gin.Context) {
		seen = c.Request.Header.Clone()
		c.Status(http.StatusNoContent)
	})

	r := httptest.NewRequest(http.MethodGet, "/denuncia", nil)
	r.Header.Set(security.HeaderGatewaySubject, "spoofed-admin")
	r.Header.Set(security.HeaderGatewayRoles, "ADMIN")
	r.Header.Set(security.HeaderGatewaySignature, "spoofed")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, seen.Get(security.HeaderGatewaySubject))
	assert.Empty(t, seen.Get(security.HeaderGatewayRoles))
	assert.Empty(t, seen.Get(security.HeaderGatewaySignature))
}
