package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/cstruct/schema"
)

// Config is the cstruct CLI configuration.
type Config struct {
	// Defaults apply to schema records that do not set their own options.
	Defaults schema.Options `yaml:"defaults"`
	Store    Store          `yaml:"store"`
	Logging  Logging        `yaml:"logging"`
	Output   Output         `yaml:"output"`
}

// Store configures the record buffer store.
type Store struct {
	Dir  string `yaml:"dir"`
	Sync bool   `yaml:"sync"`
}

// Logging configures the zap logger.
type Logging struct {
	Level string `yaml:"level"`
	// Format is "console" or "json".
	Format string `yaml:"format"`
}

// Output configures terminal output.
type Output struct {
	// Color is "auto", "always" or "never".
	Color string `yaml:"color"`
	// Metrics dumps Prometheus metrics to stderr after each command.
	Metrics bool `yaml:"metrics"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Defaults: schema.Options{
			ByteOrder: "native",
			Width:     "standard",
		},
		Store: Store{
			Dir: "./cstruct-data",
		},
		Logging: Logging{
			Level:  "warn",
			Format: "console",
		},
		Output: Output{
			Color: "auto",
		},
	}
}

// LoadConfig reads path over the defaults. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// SaveConfig writes config to path, creating its directory.
func SaveConfig(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DefaultPath returns ~/.config/cstruct/config.yaml, or ./cstruct.yaml
// when there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./cstruct.yaml"
	}
	return filepath.Join(home, ".config", "cstruct", "config.yaml")
}

// Exists reports whether a config file is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs error
	if _, err := c.Defaults.RecordOptions(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("defaults: %w", err))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = multierr.Append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}
	switch c.Output.Color {
	case "auto", "always", "never":
	default:
		errs = multierr.Append(errs, fmt.Errorf("output.color: unknown mode %q", c.Output.Color))
	}
	if strings.TrimSpace(c.Store.Dir) == "" {
		errs = multierr.Append(errs, fmt.Errorf("store.dir: empty"))
	}
	return errs
}

// NewLogger builds a zap logger from the logging settings.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return nil, err
	}
	var zc zap.Config
	if c.Logging.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
