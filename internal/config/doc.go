// Package config loads, normalizes, and validates optdrive configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML or YAML files. Validation instantiates every
// configured encoder so that all configuration errors, including malformed
// setting bounds inside an encoder section, surface at load time rather than
// in the middle of an adjust operation.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
