package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnvVar overrides the findid home directory.
const HomeEnvVar = "FINDID_HOME"

// ConfigFileName is the config file inside the home directory.
const ConfigFileName = "config.yaml"

// GetFindIDHome returns the findid home directory
// Priority order:
//  1. FINDID_HOME environment variable (if set)
//  2. .findid in the current working directory (fallback)
//
// The directory is created if it doesn't exist
func GetFindIDHome() (string, error) {
	home := os.Getenv(HomeEnvVar)
	if home == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		home = filepath.Join(cwd, ".findid")
	}

	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("create findid home directory: %w", err)
	}
	return home, nil
}
