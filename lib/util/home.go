package util

import (
	"os"
	"path/filepath"
)

// BaseDirName is the per-user directory holding beam configuration and keys.
const BaseDirName = ".go-beam"

// UserHome returns the current user's home directory.
// Falls back to $HOME, then USERPROFILE, then the working directory, so the
// CLI still starts in containers without a home directory.
func UserHome() string {
	homeDir, err := os.UserHomeDir()
	if err == nil {
		return homeDir
	}
	if home := os.Getenv("HOME"); home != "" {
		log.WithError(err).Warn("os.UserHomeDir failed, falling back to $HOME")
		return home
	}
	if home := os.Getenv("USERPROFILE"); home != "" {
		log.WithError(err).Warn("os.UserHomeDir failed, falling back to USERPROFILE")
		return home
	}
	// Key directories are created 0700 by the keystore, so the working
	// directory is an acceptable last resort.
	if wd, wdErr := os.Getwd(); wdErr == nil {
		log.WithError(err).Warn("os.UserHomeDir and $HOME unavailable; falling back to working directory")
		return wd
	}
	panic("go-beam: unable to determine home directory; set $HOME environment variable")
}

// BaseDir returns $HOME/.go-beam.
func BaseDir() string {
	return filepath.Join(UserHome(), BaseDirName)
}
