// Package config loads, normalizes, and validates spritegen configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts and paths relative to the config file), reads TOML or YAML files,
// and compiles each sprite group's include pattern. The Config type is the
// run's Options value: sprite groups, padding, target folders, class
// prefixes, and the sprite URL template.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, compiled include patterns, and clear validation errors.
package config
