// Package middleware provides the gin middleware chain for the
// gateway: access control backed by the path-policy classifier, plus
// request logging, recovery, tracing and rate limiting.
package middleware
