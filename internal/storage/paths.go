// Package storage persists games, opening books and preferences in BadgerDB.
package storage

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/apex/log"
)

const appName = "cach"

// GetDataDir returns the platform-specific data directory for the application.
// - macOS: ~/Library/Application Support/cach/
// - Linux: ~/.local/share/cach/
// - Windows: %APPDATA%/cach/
func GetDataDir() (string, error) {
	var baseDir string

	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support")

	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, "AppData", "Roaming")
		}

	default:
		// Check XDG_DATA_HOME first
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(homeDir, ".local", "share")
		}
	}

	return ensureDir(filepath.Join(baseDir, appName))
}

// DataDir returns dir, or the platform data directory when dir is empty.
// The directory is created if needed.
func DataDir(dir string) (string, error) {
	if dir == "" {
		return GetDataDir()
	}
	return ensureDir(dir)
}

// GetDatabaseDir returns the directory for the BadgerDB database inside
// dataDir.
func GetDatabaseDir(dataDir string) (string, error) {
	dbDir, err := ensureDir(filepath.Join(dataDir, "db"))
	if err != nil {
		return "", err
	}
	log.WithField("dir", dbDir).Debug("database directory")
	return dbDir, nil
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
