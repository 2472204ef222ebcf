package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// DatabaseConfig holds the location of the account database.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// ProvidersConfig points at the provider registry file.
type ProvidersConfig struct {
	// File is a YAML file listing known providers. When it does not exist
	// the built-in registry is used.
	File string `mapstructure:"file" yaml:"file"`
}

// ValidationConfig controls how account credentials are checked against
// mail servers.
type ValidationConfig struct {
	TimeoutSec     int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	DialTimeoutSec int    `mapstructure:"dial_timeout_sec" yaml:"dial_timeout_sec"`
	LocalName      string `mapstructure:"local_name" yaml:"local_name"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Providers  ProvidersConfig  `mapstructure:"providers" yaml:"providers"`
	Validation ValidationConfig `mapstructure:"validation" yaml:"validation"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Display    DisplayConfig    `mapstructure:"display" yaml:"display"`
}

// ConfigDir returns the directory holding configuration and data files,
// ~/.config/mailsettings.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailsettings")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailsettings/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := ConfigDir()
	return &AppConfig{
		Database: DatabaseConfig{
			Path: filepath.Join(dir, "accounts.db"),
		},
		Providers: ProvidersConfig{
			File: filepath.Join(dir, "providers.yaml"),
		},
		Validation: ValidationConfig{
			TimeoutSec:     60,
			DialTimeoutSec: 10,
			LocalName:      "localhost",
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "mailsettings.log"),
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("database.path", cfg.Database.Path)
	v.SetDefault("providers.file", cfg.Providers.File)
	v.SetDefault("validation.timeout_sec", cfg.Validation.TimeoutSec)
	v.SetDefault("validation.dial_timeout_sec", cfg.Validation.DialTimeoutSec)
	v.SetDefault("validation.local_name", cfg.Validation.LocalName)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("display.theme", cfg.Display.Theme)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return cfg, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Validation.TimeoutSec <= 0 {
		cfg.Validation.TimeoutSec = 60
	}
	if cfg.Validation.DialTimeoutSec <= 0 {
		cfg.Validation.DialTimeoutSec = 10
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("providers", cfg.Providers)
	v.Set("validation", cfg.Validation)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
