package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// envDefaults holds the environment overrides for default paths.
type envDefaults struct {
	ConfigPath string `envconfig:"PIN_CONFIG_PATH"`
	Home       string `envconfig:"PIN_HOME"`
}

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - PIN_CONFIG_PATH: config file location (default: ~/.config/pin.toml)
//   - PIN_HOME: base directory for pin data (default: ~/.local/share/pin)
func GetDefaults() (map[string]string, error) {
	var env envDefaults
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	configPath := env.ConfigPath
	baseDir := env.Home
	if configPath == "" || baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		if configPath == "" {
			configPath = filepath.Join(homeDir, ".config", "pin.toml")
		}
		if baseDir == "" {
			baseDir = filepath.Join(homeDir, ".local", "share", "pin")
		}
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}
