package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/canal-etico/gateway/internal/auth"
	"github.com/canal-etico/gateway/internal/policy"
	"github.com/canal-etico/gateway/internal/security"
)

// AccessControlConfig holds configuration for the access control
// middleware.
type AccessControlConfig struct {
	// Policy is the path-policy classifier consulted on every request.
	Policy *policy.PathPolicy

	// Verifier verifies identity tokens on protected paths.
	Verifier auth.Verifier

	// Extractor extracts the raw token from the request. Defaults to
	// bearer header with cookie fallback.
	Extractor auth.Extractor

	// Signer, when set, stamps the signed gateway-origin header on
	// requests forwarded upstream.
	Signer security.Signer

	// Logger for access decisions.
	Logger *zap.Logger
}

// AccessControl returns the gateway request filter. For every request
// it consults the path policy: public paths pass through untouched,
// protected paths require a verified identity token, and role-gated
// paths additionally require the identity's roles to intersect the
// allowed set. Requests that fail are rejected here and never reach
// the upstream.
func AccessControl(config AccessControlConfig) gin.HandlerFunc {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Extractor == nil {
		config.Extractor = auth.DefaultExtractor()
	}

	return func(c *gin.Context) {
		// Inbound gateway headers are never trusted.
		c.Request.Header.Del(security.HeaderGatewaySubject)
		c.Request.Header.Del(security.HeaderGatewayRoles)
		c.Request.Header.Del(security.HeaderGatewaySignature)

		// RequestURI keeps the query component; the policy strips it
		// during normalization.
		requestPath := c.Request.URL.RequestURI()

		if config.Policy.IsPublic(requestPath) {
			c.Next()
			return
		}

		identity, ok := authenticate(c, config)
		if !ok {
			return
		}

		allowed := config.Policy.AllowedRoles(requestPath)
		if !allowed.IsEmpty() && !allowed.Intersects(identity.Roles) {
			config.Logger.Warn("role gate rejected request",
				zap.String("path", c.Request.URL.Path),
				zap.String("subject", identity.Subject),
				zap.Strings("allowed", allowed.Roles()),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "insufficient role",
			})
			return
		}

		ctx := auth.ContextWithIdentity(c.Request.Context(), identity)
		c.Request = c.Request.WithContext(ctx)
		stampOriginHeaders(c, identity, config.Signer)

		c.Next()
	}
}

// authenticate extracts and verifies the identity token, writing the
// 401 response on failure.
func authenticate(c *gin.Context, config AccessControlConfig) (*auth.Identity, bool) {
	token, err := config.Extractor.Extract(c.Request)
	if err != nil {
		config.Logger.Debug("protected path without token",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "authentication required",
		})
		return nil, false
	}

	identity, err := config.Verifier.Verify(c.Request.Context(), token)
	if err != nil {
		config.Logger.Debug("token verification failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":   "unauthorized",
			"message": "invalid token",
		})
		return nil, false
	}

	return identity, true
}

// stampOriginHeaders sets the identity and origin-signature headers
// consumed by internal services. Inbound values are overwritten so a
// client cannot smuggle them through the gateway.
func stampOriginHeaders(c *gin.Context, identity *auth.Identity, signer security.Signer) {
	c.Request.Header.Set(security.HeaderGatewaySubject, identity.Subject)
	c.Request.Header.Set(security.HeaderGatewayRoles, strings.Join(identity.Roles, ","))

	if signer != nil {
		signature := signer.Sign(c.Request.Method, c.Request.URL.Path, identity.Subject)
		c.Request.Header.Set(security.HeaderGatewaySignature, signature)
	}
}

// GetIdentity returns the verified identity from the request context.
func GetIdentity(c *gin.Context) (*auth.Identity, bool) {
	return auth.IdentityFromContext(c.Request.Context())
}
