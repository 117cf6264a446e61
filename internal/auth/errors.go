package auth

import "errors"

// Sentinel errors returned by token extraction and verification.
var (
	// ErrNoToken indicates that no token was present in the request.
	ErrNoToken = errors.New("no token in request")

	// ErrInvalidToken indicates that the token failed verification.
	ErrInvalidToken = errors.New("invalid token")
)
