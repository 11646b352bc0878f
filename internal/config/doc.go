// Package config loads, normalizes, and validates the curacast TOML
// configuration. Load applies defaults first, so a missing file yields a
// usable configuration for local experimentation.
package config
