// Package config provides configuration loading and management for bin2gif.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"bin2gif/internal/models"
	"bin2gif/pkg/projection"
)

// Formats lists the supported output image formats
var Formats = []string{"gif", "png", "bmp"}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Input describes the layout of the binary files
	Input struct {
		// Width and Height of the stored grid; 0 means autodetect a square grid
		Width  int `yaml:"width"`
		Height int `yaml:"height"`

		// Type forces the element type: "double", "complex" or empty for autodetect
		Type string `yaml:"type"`

		// Header and Footer are byte counts skipped at either end of the file
		Header int64 `yaml:"header"`
		Footer int64 `yaml:"footer"`

		// Axial treats inputs as axial profiles and rasterizes the central time slice
		Axial bool `yaml:"axial"`

		// AxialAll treats inputs as axial profiles and rasterizes the radius-time plane
		AxialAll bool `yaml:"axialAll"`
	} `yaml:"input"`

	// Output parameters
	Output struct {
		// Width and Height of the produced image; 0 means no resize
		Width  int `yaml:"width"`
		Height int `yaml:"height"`

		// Func is the complex to real projection
		Func string `yaml:"func"`

		// Amp is the color scale amplitude; values <= 0 leave it unset
		Amp float64 `yaml:"amp"`

		Min    float64 `yaml:"min"`
		Max    float64 `yaml:"max"`
		UseMin bool    `yaml:"useMin"`
		UseMax bool    `yaml:"useMax"`

		DivideByE bool `yaml:"divideByE"`

		// Reflect swaps the x and y image axes
		Reflect bool `yaml:"reflect"`

		// Palette is a palette file; empty selects grayscale
		Palette string `yaml:"palette"`

		// Format is one of Formats
		Format string `yaml:"format"`

		// Force rewrites existing images
		Force bool `yaml:"force"`

		// DeleteOriginal removes each binary file after a successful conversion
		DeleteOriginal bool `yaml:"deleteOriginal"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// Debug prints the resolved parameters and expanded inputs
		Debug bool `yaml:"debug"`
	} `yaml:"output"`

	// Processing parameters
	Processing struct {
		// NumCores specifies how many CPU cores to use for parallel processing
		NumCores int `yaml:"numCores"`
	} `yaml:"processing"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Output.Func = projection.Real.String()
	cfg.Output.Format = "gif"

	cfg.Processing.NumCores = runtime.NumCPU() // Use all available cores by default

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
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
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// ParseKind maps an element type name to a Kind. The empty string selects
// autodetection.
func ParseKind(name string) (models.Kind, error) {
	switch strings.ToLower(name) {
	case "":
		return models.KindAuto, nil
	case "double", "d":
		return models.Real, nil
	case "complex", "c":
		return models.Complex, nil
	}
	return models.KindAuto, fmt.Errorf("unknown element type %q (must be double or complex)", name)
}

// Validate reports the first inconsistency in cfg. Requesting both axial
// modes fails with models.ErrConflictingAxialModes.
func (c *Config) Validate() error {
	if c.Input.Axial && c.Input.AxialAll {
		return fmt.Errorf("%w: axial and axial-all are mutually exclusive", models.ErrConflictingAxialModes)
	}
	if c.Input.Width < 0 || c.Input.Height < 0 {
		return fmt.Errorf("input size %dx%d must not be negative", c.Input.Width, c.Input.Height)
	}
	if (c.Input.Width == 0) != (c.Input.Height == 0) {
		return fmt.Errorf("input size %dx%d: set both dimensions or neither", c.Input.Width, c.Input.Height)
	}
	if c.Input.Header < 0 || c.Input.Footer < 0 {
		return fmt.Errorf("header %d and footer %d must not be negative", c.Input.Header, c.Input.Footer)
	}
	if _, err := ParseKind(c.Input.Type); err != nil {
		return err
	}
	if _, err := projection.ParseMode(c.Output.Func); err != nil {
		return err
	}
	if !supportedFormat(c.Output.Format) {
		return fmt.Errorf("unsupported output format %q (must be one of %s)", c.Output.Format, strings.Join(Formats, ", "))
	}
	if c.Processing.NumCores < 1 {
		return fmt.Errorf("numCores must be at least 1, got %d", c.Processing.NumCores)
	}
	return nil
}

func supportedFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}
