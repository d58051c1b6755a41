// Package config loads, validates, and normalizes the clipo configuration
// file. Configuration lives in a TOML file (default ~/.config/clipo/config.toml)
// and covers API endpoints, local paths, polling behaviour, and log output.
package config
