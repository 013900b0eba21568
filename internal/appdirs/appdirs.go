// Package appdirs resolves the per-user directories dob keeps its files in.
// Overrides come first so tests and scripts can sandbox every path:
// DOB_CONFIG_DIR for configuration, DOB_DATA_DIR for the store and logs.
package appdirs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "dob"

// Environment variable names honored by the path helpers.
const (
	EnvConfigDir = "DOB_CONFIG_DIR"
	EnvDataDir   = "DOB_DATA_DIR"
)

// ConfigDir returns the directory holding dob.yaml.
// It checks the DOB_CONFIG_DIR environment variable first,
// then falls back to the platform user config dir (e.g. ~/.config/dob).
func ConfigDir() (string, error) {
	if v := os.Getenv(EnvConfigDir); v != "" {
		return v, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config directory: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// DataDir returns the directory holding the store, log file, and import
// backups. It checks the DOB_DATA_DIR environment variable first, then
// XDG_DATA_HOME, then the platform default (~/.local/share/dob on Linux).
func DataDir() (string, error) {
	if v := os.Getenv(EnvDataDir); v != "" {
		return v, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appDirName), nil
	}

	switch runtime.GOOS {
	case "windows":
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("resolving user data directory: %w", err)
		}
		return filepath.Join(base, appDirName), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", appDirName), nil
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, ".local", "share", appDirName), nil
	}
}

// EnsureDir creates dir with standard permissions if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}
