// Package config loads, normalizes, and validates submerge configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SUBMERGE_MKVMERGE. The Config type centralizes every knob the daemon and CLI
// need: where state lives, which muxer to run, how outputs are named, and how
// long an outcome stays visible before the registry clears.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical language codes, and clear validation errors.
package config
