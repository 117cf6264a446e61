package auth

import (
	"net/http"
	"strings"
)

// Default token locations.
const (
	// DefaultTokenHeader is the header carrying the bearer token.
	DefaultTokenHeader = "Authorization"

	// DefaultTokenCookie is the cookie carrying the session token for
	// browser flows.
	DefaultTokenCookie = "access_token"
)

// Extractor extracts a raw token from an HTTP request.
type Extractor interface {
	// Extract returns the raw token, or ErrNoToken when absent.
	Extract(r *http.Request) (string, error)
}

// bearerExtractor extracts a bearer token from a header, falling back
// to a cookie.
type bearerExtractor struct {
	header string
	cookie string
}

// NewExtractor creates an extractor that reads the given header (as a
// bearer token) and falls back to the given cookie. Empty values select
// the defaults.
func NewExtractor(header, cookie string) Extractor {
	if header == "" {
		header = DefaultTokenHeader
	}
	if cookie == "" {
		cookie = DefaultTokenCookie
	}
	return &bearerExtractor{header: header, cookie: cookie}
}

// DefaultExtractor returns an extractor with default locations.
func DefaultExtractor() Extractor {
	return NewExtractor("", "")
}

// Extract implements Extractor.
func (e *bearerExtractor) Extract(r *http.Request) (string, error) {
	if value := r.Header.Get(e.header); value != "" {
		const prefix = "Bearer "
		if len(value) > len(prefix) && strings.EqualFold(value[:len(prefix)], prefix) {
			return strings.TrimSpace(value[len(prefix):]), nil
		}
	}

	if cookie, err := r.Cookie(e.cookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", ErrNoToken
}
