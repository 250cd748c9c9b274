// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Drill DrillFileConfig `toml:"drill"`
	Hooks HooksConfig     `toml:"hooks"`
	Log   LogConfig       `toml:"log"`
}

// DrillFileConfig maps drill-related settings.
type DrillFileConfig struct {
	Category      *string  `toml:"category"`
	From          *int     `toml:"from"`
	To            *int     `toml:"to"`
	BudgetSeconds *float64 `toml:"budget-seconds"`
	Learning      *bool    `toml:"learning"`
	Vibrate       *bool    `toml:"vibrate"`
	DecksDir      *string  `toml:"decks-dir"`
}

// HooksConfig holds shell commands run on activity changes.
type HooksConfig struct {
	OnActive *string `toml:"on-active"`
	OnIdle   *string `toml:"on-idle"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	Path  *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
