package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvBaseDirectory = "PREPOST_BASE_DIRECTORY"
	EnvDeviceUser    = "DEVICE_USER"
	EnvDevicePword   = "DEVICE_PWORD"
	EnvCommandFile   = "INPUT_CMD_FILE"
	EnvIndexFile     = "INPUT_INDEX_FILE"
)

// Load reads the tool config, applies defaults and environment overrides and
// validates the result. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadDotenv loads a .env file into the environment before Load runs.
// A missing file is ignored.
func LoadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.BaseDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			c.BaseDirectory = wd
		}
	}
	if c.Folders.Output == "" {
		c.Folders.Output = "output"
	}
	if c.Folders.ValFiles == "" {
		c.Folders.ValFiles = "val_files"
	}
	if c.Inputs.CommandFile == "" {
		c.Inputs.CommandFile = "input_cmds.yml"
	}
	if c.Inputs.IndexFile == "" {
		c.Inputs.IndexFile = "input_index.yml"
	}
	if c.Device.Username == "" {
		c.Device.Username = "admin"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "fs"
	}
	if c.Diff.SimilarityThreshold == 0 {
		c.Diff.SimilarityThreshold = 0.5
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Metrics.File == "" {
		c.Metrics.File = "metrics.prom"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvBaseDirectory); v != "" {
		c.BaseDirectory = v
	}
	if v := os.Getenv(EnvDeviceUser); v != "" {
		c.Device.Username = v
	}
	if v := os.Getenv(EnvCommandFile); v != "" {
		c.Inputs.CommandFile = v
	}
	if v := os.Getenv(EnvIndexFile); v != "" {
		c.Inputs.IndexFile = v
	}
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "fs", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.Store.Backend == "sqlite" && c.Store.Path == "" {
		return fmt.Errorf("store backend sqlite requires store.path")
	}
	if c.Diff.SimilarityThreshold < 0 || c.Diff.SimilarityThreshold > 1 {
		return fmt.Errorf("diff.similarity_threshold must be within [0,1], got %v", c.Diff.SimilarityThreshold)
	}
	return nil
}

// ChangeDir resolves a change directory name against the base directory.
func (c *Config) ChangeDir(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.BaseDirectory, name)
}

// OutputDir returns the output folder for a change directory, creating it if
// needed.
func (c *Config) OutputDir(change string) (string, error) {
	dir := filepath.Join(c.ChangeDir(change), c.Folders.Output)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output folder: %w", err)
	}
	return dir, nil
}

// ValFilesDir returns the validation files folder for a change directory,
// creating it if needed.
func (c *Config) ValFilesDir(change string) (string, error) {
	dir := filepath.Join(c.ChangeDir(change), c.Folders.ValFiles)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create val_files folder: %w", err)
	}
	return dir, nil
}

// CommandFile returns the command input document path for a change directory.
func (c *Config) CommandFile(change string) string {
	return filepath.Join(c.ChangeDir(change), c.Inputs.CommandFile)
}

// IndexFile returns the feature index document path for a change directory.
func (c *Config) IndexFile(change string) string {
	return filepath.Join(c.ChangeDir(change), c.Inputs.IndexFile)
}
