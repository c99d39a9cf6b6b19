package qconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file. Callers apply
// CLI flag overrides (highest priority) after Load returns. An explicit
// configPath wins over the standard-location search; pass "" to only
// search standard locations.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	return cfg, nil
}

// findConfigFile looks for a config file in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./qslim.yaml",
		filepath.Join(ConfigDir(), "qslim.yaml"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "qslim")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "qslim")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "qslim")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "qslim")
	}
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
