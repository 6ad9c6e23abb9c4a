// Package config assembles a layered configuration from multiple sources
// (defaults, YAML files, environment variables) with precedence:
// Environment variables > first listed source > later sources > Defaults.
// The merged result is exposed through key and path accessors and can be
// exported back to YAML, to a sourcable env-file script, or decoded into a
// typed struct.
package config
