// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// Dir returns the tally configuration directory, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "tally")
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultCachePath is the default location of the transaction cache file.
func DefaultCachePath() string {
	dir, err := Dir()
	if err != nil {
		return "tally-cache.json"
	}
	return filepath.Join(dir, "cache.json")
}

// DefaultDatabasePath is the default location of the decision log database.
func DefaultDatabasePath() string {
	dir, err := Dir()
	if err != nil {
		return "tally.db"
	}
	return filepath.Join(dir, "tally.db")
}
