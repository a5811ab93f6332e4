// Package xdg provides XDG Base Directory paths for Clipmark.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "clipmark"

// ConfigDir returns the XDG config directory for clipmark.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// DefaultConfigPath returns the default location of the config file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
