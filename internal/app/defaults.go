package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - HAMSTERCAL_CONFIG_PATH: config file location (default: ~/.config/hamstercal.toml)
//   - HAMSTERCAL_HOME: base directory for hamstercal data (default: ~/.local/share/hamstercal)
//
// hamster_db is where the Hamster applet keeps its database.
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"hamster_db":  filepath.Join(homeDir, ".local", "share", "hamster-applet", "hamster.db"),
	}, nil
}

// getConfigPath returns the config file path, checking HAMSTERCAL_CONFIG_PATH first,
// then falling back to the default ~/.config/hamstercal.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("HAMSTERCAL_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "hamstercal.toml"), nil
}

// getBaseDir returns the base directory for hamstercal data, checking HAMSTERCAL_HOME
// first, then falling back to the XDG default ~/.local/share/hamstercal.
func getBaseDir() (string, error) {
	if path := os.Getenv("HAMSTERCAL_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "hamstercal"), nil
}
