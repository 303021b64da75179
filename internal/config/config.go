// Package config loads the YAML configuration file, creating it with
// defaults on first run.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const appDir = "shiftcal"

type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format"`
	// Path is the log file. The terminal belongs to the UI, so logs never go
	// to stdout.
	Path string `yaml:"path"`
}

type Config struct {
	DBPath    string    `yaml:"db_path"`
	ExportDir string    `yaml:"export_dir"`
	ProductID string    `yaml:"product_id"`
	Log       LogConfig `yaml:"log"`
}

// Dir is the directory holding the config file, database and log.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDir), nil
}

// DefaultPath is where Load looks when no path is given on the command line.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing values so older or partial files still work.
func (c *Config) Normalize() {
	dir, err := Dir()
	if err != nil {
		dir = "."
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(dir, "shiftcal.db")
	}
	if c.ExportDir == "" {
		c.ExportDir = defaultExportDir()
	}
	if c.ProductID == "" {
		c.ProductID = "-//ShiftCalendar//CN"
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		c.Log.Level = "info"
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		c.Log.Format = "json"
	}
	if c.Log.Path == "" {
		c.Log.Path = filepath.Join(dir, "shiftcal.log")
	}
}

func defaultExportDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// Load reads the config at path. A missing file is created with defaults
// and 0600 permissions.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes cfg to path through a temp file and rename.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".shiftcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
