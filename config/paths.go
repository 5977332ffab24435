package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "jarvis"

// GetConfigDir returns the platform-specific configuration directory
// Linux/Mac: ~/.config/jarvis
// Windows: C:\Users\username\.config\jarvis
func GetConfigDir() string {
	return filepath.Join(GetHomeDir(), ".config", appName)
}

// GetDefaultDataDir returns the platform-specific default data directory
// Linux/Mac: ~/.local/share/jarvis
// Windows: C:\Users\username\AppData\Local\jarvis
func GetDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(localAppData(), appName)
	}
	return filepath.Join(GetHomeDir(), ".local", "share", appName)
}

// GetCacheDir returns the platform-specific cache directory.
// Synthesized audio lives here, never in the data directory.
func GetCacheDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(localAppData(), appName, "cache")
	}
	return filepath.Join(GetHomeDir(), ".cache", appName)
}

func localAppData() string {
	dir := os.Getenv("LOCALAPPDATA")
	if dir == "" {
		dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Local")
	}
	return dir
}

func GetConfigFilePath() string {
	return filepath.Join(GetConfigDir(), "config.toml")
}

// GetHomeDir returns the user's home directory across platforms
func GetHomeDir() string {
	if runtime.GOOS == "windows" {
		home := os.Getenv("USERPROFILE")
		if home == "" {
			home = os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		}
		if home == "" {
			home = "C:\\"
		}
		return home
	}
	home := os.Getenv("HOME")
	if home == "" {
		home = "/"
	}
	return home
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(GetHomeDir(), path[2:])
	}

	path = os.ExpandEnv(path)

	return filepath.Clean(path)
}

// EnsureDir creates a directory if it doesn't exist (0700 - user-only access)
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0700)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// GetTempDir returns the path to the secure temp directory for transient audio
func GetTempDir() string {
	return filepath.Join(GetCacheDir(), "tmp")
}

// EnsureDataDirPermissions ensures data directory has 0700 permissions
func EnsureDataDirPermissions(dataDir string) error {
	info, err := os.Stat(dataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return os.MkdirAll(dataDir, 0700)
		}
		return err
	}

	if info.Mode().Perm() != 0700 {
		return os.Chmod(dataDir, 0700)
	}
	return nil
}

// CleanupTempDir removes the temp directory if it exists
func CleanupTempDir() error {
	tmpDir := GetTempDir()
	if _, err := os.Stat(tmpDir); err == nil {
		return os.RemoveAll(tmpDir)
	}
	return nil
}

// CreateTempDir creates the secure temp directory with 0700 permissions
func CreateTempDir() error {
	return os.MkdirAll(GetTempDir(), 0700)
}
