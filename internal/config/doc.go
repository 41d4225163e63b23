// Package config loads, normalizes, and validates the TOML configuration.
//
// Load resolves the config path (explicit flag, ~/.config/storyreel/config.toml,
// or ./storyreel.toml), overlays the file on Default(), expands ~ in every
// path field, and validates. A missing file runs on defaults so read-only
// commands work before 'storyreel config init'.
package config
