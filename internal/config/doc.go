// Package config loads, normalizes, and validates the Marquee TOML
// configuration. Secrets can be overridden through environment variables so
// they never need to live in the file.
package config
