package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override file and default paths.
const (
	EnvDBPath   = "MNEMO_DB_PATH"
	EnvDecksDir = "MNEMO_DECKS_DIR"
	EnvLogLevel = "MNEMO_LOG_LEVEL"
	EnvLogPath  = "MNEMO_LOG_PATH"
)

// Paths holds resolved locations and the log level.
type Paths struct {
	DBPath   string
	DecksDir string
	LogPath  string
	LogLevel string
}

// LoadEnv loads a .env file into the process environment. Variables that are
// already set win. A missing file is not an error.
func LoadEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ResolvePaths merges defaults, the config file and the environment, in
// increasing order of precedence.
func ResolvePaths(cfg FileConfig) Paths {
	p := Paths{
		DBPath:   DefaultDBPath(),
		DecksDir: DefaultDecksDir(),
		LogPath:  DefaultLogPath(),
		LogLevel: "info",
	}
	if cfg.Drill.DecksDir != nil && *cfg.Drill.DecksDir != "" {
		p.DecksDir = *cfg.Drill.DecksDir
	}
	if cfg.Log.Level != nil && *cfg.Log.Level != "" {
		p.LogLevel = *cfg.Log.Level
	}
	if cfg.Log.Path != nil && *cfg.Log.Path != "" {
		p.LogPath = *cfg.Log.Path
	}
	overrideFromEnv(&p.DBPath, EnvDBPath)
	overrideFromEnv(&p.DecksDir, EnvDecksDir)
	overrideFromEnv(&p.LogLevel, EnvLogLevel)
	overrideFromEnv(&p.LogPath, EnvLogPath)
	return p
}

func overrideFromEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}
