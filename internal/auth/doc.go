// Package auth provides identity token verification for the gateway.
//
// The path-policy classifier decides whether a request needs a token;
// this package is the collaborator that verifies the token when one is
// required. Tokens are JWTs carried in the Authorization header or in
// a cookie, verified against a shared secret or a remote JWKS.
package auth
