// Package config loads and validates the gateway configuration.
//
// Configuration comes from a single YAML file, with a small set of
// environment variable overrides for secrets that should not live on
// disk. The access policy section is read once at startup and stays
// fixed for the lifetime of the process; the file watcher only reports
// that a change happened so operators know a restart is needed.
package config
