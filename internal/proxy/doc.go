// Package proxy forwards authorized requests to the upstream
// application server.
//
// The gateway terminates authentication and authorization at the edge;
// everything that survives the access control middleware is handed to a
// Forwarder, which rewrites the request for the configured upstream,
// strips hop-by-hop headers, and appends the standard X-Forwarded-*
// headers. Upstream failures are translated into JSON error responses
// so callers never see a half-written proxy error.
package proxy
