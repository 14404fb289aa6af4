package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// rawConfig mirrors Config with pointer fields so absent keys can be told
// apart from zero values when merging onto defaults.
type rawConfig struct {
	Display            *string   `yaml:"display"`
	SettleDelay        *Duration `yaml:"settle_delay"`
	AutoResize         *bool     `yaml:"auto_resize"`
	Verbosity          *string   `yaml:"verbosity"`
	ExcludeWindowTypes *[]string `yaml:"exclude_window_types"`
	StateFile          *string   `yaml:"state_file"`
}

// DefaultConfigPath returns ~/.config/winkeep/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "winkeep", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// yields the defaults.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates the configuration at path, merging the
// file's keys onto the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.SettleDelay != nil {
		cfg.SettleDelay = *raw.SettleDelay
	}
	if raw.AutoResize != nil {
		cfg.AutoResize = *raw.AutoResize
	}
	if raw.Verbosity != nil {
		cfg.Verbosity = *raw.Verbosity
	}
	if raw.ExcludeWindowTypes != nil {
		cfg.ExcludeWindowTypes = *raw.ExcludeWindowTypes
	}
	if raw.StateFile != nil {
		cfg.StateFile = *raw.StateFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}
