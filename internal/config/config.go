// Package config loads and persists the forkmate configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"

	"github.com/forkmate/forkmate/internal/model"
)

// Config is the top-level forkmate configuration, stored at
// ~/.forkmate/config.toml.
type Config struct {
	// DefaultMergeStrategy is used for fork syncing when nothing more
	// specific is configured.
	DefaultMergeStrategy model.MergeStrategy `toml:"default_merge_strategy" mapstructure:"default_merge_strategy"`

	// SyncConcurrency caps concurrent sync operations.
	SyncConcurrency int `toml:"sync_concurrency" mapstructure:"sync_concurrency"`

	// ScanPaths are the default directories scanned for local repos.
	ScanPaths []string `toml:"scan_paths" mapstructure:"scan_paths"`

	// MaxScanDepth bounds filesystem scan recursion.
	MaxScanDepth int `toml:"max_scan_depth" mapstructure:"max_scan_depth"`

	// GitTimeoutSecs bounds each git subprocess. Zero disables the
	// timeout.
	GitTimeoutSecs int `toml:"git_timeout_secs" mapstructure:"git_timeout_secs"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultMergeStrategy: model.StrategyFastForward,
		SyncConcurrency:      8,
		ScanPaths:            []string{},
		MaxScanDepth:         4,
		GitTimeoutSecs:       600,
	}
}

// HomeDir returns the forkmate home directory (~/.forkmate).
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".forkmate"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "config.toml"), nil
}

// DBPath returns the path to the catalog database.
func DBPath() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "forkmate.db"), nil
}

// CloneBase returns the directory where forkmate clones repos that have
// no local checkout yet.
func CloneBase() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "repos"), nil
}

// LogDir returns the directory for rotated log files.
func LogDir() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "logs"), nil
}

// Load reads the config from the default location. A missing file
// yields the defaults; FORKMATE_* environment variables override values
// from either source.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config from a specific path.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("FORKMATE")
	v.AutomaticEnv()

	def := Default()
	v.SetDefault("default_merge_strategy", string(def.DefaultMergeStrategy))
	v.SetDefault("sync_concurrency", def.SyncConcurrency)
	v.SetDefault("scan_paths", def.ScanPaths)
	v.SetDefault("max_scan_depth", def.MaxScanDepth)
	v.SetDefault("git_timeout_secs", def.GitTimeoutSecs)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	// Accept the alternate strategy spellings in config files, but
	// normalize to the canonical form.
	strategy, err := model.ParseMergeStrategy(string(cfg.DefaultMergeStrategy))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.DefaultMergeStrategy = strategy

	return cfg, nil
}

// Save writes the config to the default location.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config as TOML to a specific path, creating parent
// directories as needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Init creates the forkmate home directory tree, writing the default
// config if none exists. It returns the home directory path.
func Init() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	repos := filepath.Join(home, "repos")
	logs := filepath.Join(home, "logs")
	for _, dir := range []string{home, repos, logs} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	}

	path := filepath.Join(home, "config.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := Default().SaveTo(path); err != nil {
			return "", err
		}
	}
	return home, nil
}
