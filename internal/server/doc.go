// Package server assembles and runs the gateway HTTP server.
//
// The server owns the gin engine, mounts the local endpoints (actuator
// health, Prometheus metrics), installs the middleware chain, and
// hands everything that is not served locally to the upstream
// forwarder. Start and Stop implement graceful lifecycle management
// for the process entry point.
package server
