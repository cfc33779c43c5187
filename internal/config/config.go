// Package config loads the application-level configuration file, which holds
// machine-local preferences (timezone, logging, data directory) as opposed
// to the monitored settings the tool manages itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all cc-usage-monitor preferences.
type Config struct {
	General GeneralConfig `toml:"general"`
	Log     LogConfig     `toml:"log"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	Timezone      string `toml:"timezone"`
	DataDir       string `toml:"data_dir,omitempty"`
	DefaultOutput string `toml:"default_output"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Timezone:      "Local",
			DefaultOutput: "table",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the directory holding both the config file and, by default,
// the data files.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cc-usage-monitor")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to the default location.
func Save(cfg Config) error {
	return SaveTo(cfg, Path())
}

// SaveTo writes the config to an explicit path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// DataDir resolves the data directory, honoring a config override.
func (c Config) DataDir() string {
	if c.General.DataDir != "" {
		return c.General.DataDir
	}
	return filepath.Join(Dir(), "data")
}

// LogFile resolves the log file path, honoring a config override.
func (c Config) LogFile() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(Dir(), "monitor.log")
}
