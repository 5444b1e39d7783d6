// Package config provides configuration loading and management for deblend.
// It describes the model frame, the rendering options and the sources of a
// scene in YAML and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Source types understood by BuildSources.
const (
	SourceFactorized = "factorized"
	SourceCube       = "cube"
	SourceCombined   = "combined"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Frame describes the model coordinate system
	Frame struct {
		// Shape is (channels, height, width), or (height, width) for a single channel
		Shape []int `yaml:"shape"`

		// Channels optionally names each channel
		Channels []string `yaml:"channels,omitempty"`

		// DType is the element type of rendered images: float64 or float32
		DType string `yaml:"dtype"`
	} `yaml:"frame"`

	// Rendering parameters
	Render struct {
		// NumWorkers specifies how many sources are rendered concurrently
		NumWorkers int `yaml:"numWorkers"`

		// FootprintThreshold is the value a pixel must exceed to count
		// towards the footprint of a source
		FootprintThreshold float64 `yaml:"footprintThreshold"`
	} `yaml:"render"`

	// Output parameters
	Output struct {
		// SaveSlices writes every channel of the rendered scene as an image
		SaveSlices bool `yaml:"saveSlices"`

		// SlicesDir is the directory images are written to
		SlicesDir string `yaml:"slicesDir"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`

	// Sources lists the top-level models of the scene
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig describes one model node.
type SourceConfig struct {
	// Type is factorized, cube or combined
	Type string `yaml:"type"`

	// Center is the (y, x) pixel the node is centred on
	Center []int `yaml:"center,omitempty"`

	// Size is the (height, width) of the node box
	Size []int `yaml:"size,omitempty"`

	// Spectrum holds one amplitude per channel (factorized)
	Spectrum []float64 `yaml:"spectrum,omitempty"`

	// Profile is gaussian or flat (factorized)
	Profile string `yaml:"profile,omitempty"`

	// Sigma is the width of a gaussian profile in pixels (factorized)
	Sigma float64 `yaml:"sigma,omitempty"`

	// Value fills every pixel of a cube node
	Value float64 `yaml:"value,omitempty"`

	// Operation is add or multiply (combined)
	Operation string `yaml:"operation,omitempty"`

	// CheckBoxes requires identical child boxes (combined, default true)
	CheckBoxes *bool `yaml:"checkBoxes,omitempty"`

	// Fixed freezes the parameters of the node and of all its children
	Fixed bool `yaml:"fixed,omitempty"`

	// Children are the sub-models of a combined node
	Children []SourceConfig `yaml:"children,omitempty"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default frame: three bands of 64x64 pixels
	cfg.Frame.Shape = []int{3, 64, 64}
	cfg.Frame.Channels = []string{"g", "r", "i"}
	cfg.Frame.DType = "float64"

	// Set default rendering parameters
	cfg.Render.NumWorkers = runtime.NumCPU() // Use all available cores by default
	cfg.Render.FootprintThreshold = 1e-3

	// Set default output parameters
	cfg.Output.SaveSlices = false
	cfg.Output.SlicesDir = "rendered_slices"
	cfg.Output.Verbose = false

	// Two example sources: a galaxy and a star
	cfg.Sources = []SourceConfig{
		{
			Type:     SourceFactorized,
			Center:   []int{24, 30},
			Size:     []int{21, 21},
			Spectrum: []float64{0.6, 1.0, 1.3},
			Profile:  "gaussian",
			Sigma:    4,
		},
		{
			Type:     SourceFactorized,
			Center:   []int{40, 38},
			Size:     []int{9, 9},
			Spectrum: []float64{2.0, 1.5, 0.8},
			Profile:  "gaussian",
			Sigma:    1.2,
		},
	}

	return cfg
}

// Validate checks the parts of the configuration that do not depend on the
// model graph. Structural problems of sources are reported by BuildSources.
func (c *Config) Validate() error {
	if n := len(c.Frame.Shape); n != 2 && n != 3 {
		return fmt.Errorf("frame shape must have 2 or 3 axes, got %d", n)
	}
	if c.Render.NumWorkers < 0 {
		return fmt.Errorf("numWorkers must not be negative, got %d", c.Render.NumWorkers)
	}
	if c.Output.SaveSlices && c.Output.SlicesDir == "" {
		return fmt.Errorf("slicesDir is required when saveSlices is set")
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Channel names and sources in the file replace the defaults; when the
	// file leaves them out the scene has none
	cfg.Frame.Channels = nil
	cfg.Sources = nil

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
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
