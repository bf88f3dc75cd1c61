// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Marquee Contributors

// Package xdg resolves XDG Base Directory paths for marquee.
package xdg

import (
	"os"
	"path/filepath"
)

const appName = "marquee"

// ConfigDir returns the XDG config directory for marquee.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// ConfigFile returns the default config file path. The file need not exist.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
