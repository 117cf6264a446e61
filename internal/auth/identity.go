package auth

import "context"

// Identity represents a verified identity.
type Identity struct {
	// Subject is the unique identifier of the identity.
	Subject string

	// Roles is the list of roles claimed by the identity.
	Roles []string

	// Issuer is the token issuer.
	Issuer string
}

// HasRole reports whether the identity claims the given role.
func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// identityContextKey is the context key for the verified identity.
type identityContextKey struct{}

// ContextWithIdentity adds a verified identity to the context.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext extracts the verified identity from the context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(*Identity)
	return identity, ok
}
