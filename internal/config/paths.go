package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the platform-appropriate data directory for
// stenotape. The STENOTAPE_DATA_DIR environment variable overrides it.
func DataDir() string {
	if dir := os.Getenv("STENOTAPE_DATA_DIR"); dir != "" {
		return dir
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support", "stenotape")
	case "windows":
		if appData := os.Getenv("LOCALAPPDATA"); appData != "" {
			return filepath.Join(appData, "stenotape")
		}
		return filepath.Join(homeDir(), "AppData", "Local", "stenotape")
	default:
		if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
			return filepath.Join(xdgData, "stenotape")
		}
		return filepath.Join(homeDir(), ".local", "share", "stenotape")
	}
}

// ConfigDir returns the platform-appropriate configuration directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support", "stenotape")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "stenotape")
		}
		return filepath.Join(homeDir(), "AppData", "Roaming", "stenotape")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, "stenotape")
		}
		return filepath.Join(homeDir(), ".config", "stenotape")
	}
}

// DefaultTapePath returns the default location of the tape file.
func DefaultTapePath() string {
	return filepath.Join(DataDir(), "tape.txt")
}

// DefaultSocketPath returns the default stroke feed socket path.
func DefaultSocketPath() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Application Support", "stenotape", "stenotaped.sock")
	case "windows":
		return `\\.\pipe\stenotaped`
	default:
		if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
			return filepath.Join(runtimeDir, "stenotaped.sock")
		}
		return "/tmp/stenotaped.sock"
	}
}

// FindConfigFile looks for a configuration file in the standard
// locations and returns the first that exists, or "" when none does.
// The STENOTAPE_CONFIG environment variable takes precedence.
func FindConfigFile() string {
	if path := os.Getenv("STENOTAPE_CONFIG"); path != "" {
		return path
	}

	names := []string{"config.toml", "config.json", "config.yaml", "config.yml"}
	for _, dir := range []string{".", ConfigDir(), DataDir()} {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
