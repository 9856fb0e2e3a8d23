// Package config loads and persists the provider configuration file. The
// file lives under the XDG config directory and is TOML; a missing file
// means defaults, so nothing needs to run before first use.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"github.com/blackwell-systems/chocobridge/internal/choco"
)

// EngineBinaryEnv overrides the configured engine binary when set.
const EngineBinaryEnv = "CHOCOBRIDGE_ENGINE"

// Config is the provider configuration.
type Config struct {
	// EngineBinary is the engine executable; empty means resolve "choco"
	// from PATH.
	EngineBinary string `toml:"engine_binary"`

	// EngineConfigPath is the engine's own configuration file, watched for
	// out-of-band source changes. Empty disables watching.
	EngineConfigPath string `toml:"engine_config_path"`

	// DatabasePath is the provider's source registry database. Empty means
	// the default path under the XDG data directory.
	DatabasePath string `toml:"database_path"`

	// ParentActivityID is the fixed parent activity id progress activities
	// are reported under.
	ParentActivityID int `toml:"parent_activity_id"`

	// CacheLocation overrides the engine's download cache directory.
	CacheLocation string `toml:"cache_location"`

	// AllowPrerelease includes prerelease versions in searches and installs.
	AllowPrerelease bool `toml:"allow_prerelease"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ParentActivityID: 1,
	}
}

// Path returns the configuration file path under the XDG config directory,
// creating parent directories as needed.
func Path() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join("chocobridge", "config.toml"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	return path, nil
}

// DefaultDatabasePath returns the source registry path under the XDG data
// directory.
func DefaultDatabasePath() (string, error) {
	path, err := xdg.DataFile(filepath.Join("chocobridge", "sources.db"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve database path: %w", err)
	}
	return path, nil
}

// Load reads the configuration at path. A missing file returns Default()
// without an error; a malformed file is an error. The CHOCOBRIDGE_ENGINE
// environment variable overrides the engine binary either way.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if bin := os.Getenv(EngineBinaryEnv); bin != "" {
		cfg.EngineBinary = bin
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// SessionOptions converts the configuration into engine session options.
func (c Config) SessionOptions() choco.SessionOptions {
	return choco.SessionOptions{
		CacheLocation:   c.CacheLocation,
		AllowPrerelease: c.AllowPrerelease,
	}
}
