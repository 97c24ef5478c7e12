// Package config loads, normalizes, and validates the catalog tool's TOML
// configuration.
//
// Load merges a config file over Default, expands "~" in paths, applies the
// LMS_* environment overrides, and validates the result. CreateSample writes
// the embedded sample so users can start from documented defaults.
package config
