package utils

import (
	"os"
	"path/filepath"
)

const appDirName = "deviceadmin"

// DefaultDataDir returns the per-user directory holding installation state.
// Falls back to the temp dir when no user config dir is available.
func DefaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(os.TempDir(), appDirName)
	}
	return filepath.Join(dir, appDirName)
}

// EnsureDir creates dir (and parents) with owner-only permissions.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0700)
}
