package app

import (
	"os"
	"path/filepath"
)

const (
	Name = "qrforge"

	// ConfigFile is the config file name inside ConfigDir.
	ConfigFile = "config.yaml"
	// EnvFile is loaded from the working directory when present.
	EnvFile = ".env"

	// DefaultListen keeps the web UI on loopback unless asked otherwise.
	DefaultListen = "127.0.0.1:3333"
)

// ConfigDir is $XDG_CONFIG_HOME/qrforge (or the platform equivalent),
// falling back to ./.qrforge when no user config dir exists.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil || base == "" {
		return "." + Name
	}
	return filepath.Join(base, Name)
}

func ConfigPath() string { return filepath.Join(ConfigDir(), ConfigFile) }
