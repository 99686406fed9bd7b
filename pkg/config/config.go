// Package config provides configuration loading and management for archeoview.
// It handles loading configuration from YAML files, applies environment
// overrides and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. ARCHEOVIEW_PROCESSING_COMPONENTS
const EnvPrefix = "ARCHEOVIEW"

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// Components is the number of principal components to keep
		Components int `yaml:"components"`

		// Normalize enables global min-max scaling before PCA
		Normalize bool `yaml:"normalize"`

		// Workers bounds how many band files are decoded concurrently
		Workers int `yaml:"workers"`

		// Extensions lists the raster file extensions to load
		Extensions []string `yaml:"extensions"`
	} `yaml:"processing"`

	// Output parameters
	Output struct {
		// Dir is where images are written
		Dir string `yaml:"dir"`

		// SaveBands writes every reduced band as a grayscale image
		SaveBands bool `yaml:"saveBands" split_words:"true"`

		// SaveComposite writes the first three components as an RGB image
		SaveComposite bool `yaml:"saveComposite" split_words:"true"`

		// SaveTrend writes the first-to-last band difference grid
		SaveTrend bool `yaml:"saveTrend" split_words:"true"`

		// CellSize is the side in pixels of one trend grid cell
		CellSize int `yaml:"cellSize" split_words:"true"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.Components = 3
	cfg.Processing.Normalize = true
	cfg.Processing.Workers = runtime.NumCPU()
	cfg.Processing.Extensions = []string{".tif", ".tiff"}

	cfg.Output.Dir = "output"
	cfg.Output.SaveBands = true
	cfg.Output.SaveComposite = true
	cfg.Output.SaveTrend = false
	cfg.Output.CellSize = 20
	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file, then applies environment
// overrides. If the file doesn't exist, the defaults are used as the base.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case os.IsNotExist(err):
			// defaults
		case err != nil:
			return nil, fmt.Errorf("error reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error reading environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable
func (c *Config) Validate() error {
	if c.Processing.Components < 1 {
		return fmt.Errorf("processing.components must be at least 1, got %d", c.Processing.Components)
	}
	if c.Processing.Workers < 1 {
		return fmt.Errorf("processing.workers must be at least 1, got %d", c.Processing.Workers)
	}
	if len(c.Processing.Extensions) == 0 {
		return fmt.Errorf("processing.extensions must not be empty")
	}
	if c.Output.CellSize < 1 {
		return fmt.Errorf("output.cellSize must be at least 1, got %d", c.Output.CellSize)
	}
	return nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
