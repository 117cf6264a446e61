// Package health exposes actuator-style health endpoints.
//
// The gateway answers /actuator/health (and its liveness and readiness
// variants) locally instead of forwarding to the upstream, so
// orchestrators can probe the edge without a token. The response shape
// follows the actuator convention: an aggregate "UP"/"DOWN" status plus
// a component map with per-check details.
package health
