// Package config loads, normalizes, and validates dbglog configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML or YAML files chosen by extension, and watches the file for edits so
// a running host can re-apply category states without a restart.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
