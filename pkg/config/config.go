// Package config provides configuration loading and management for brainzone.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"brainzone/internal/models"
	"brainzone/pkg/coords"
)

// LUTVariant names one color lookup table release
type LUTVariant struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Classification parameters
	Classification struct {
		// SideLength is the edge of the cube the sampling ball is inscribed in, in voxels
		SideLength int `yaml:"sideLength"`

		// LUTVariant selects one of Resources.LUTVariants by name; empty means the last one
		LUTVariant string `yaml:"lutVariant"`

		// Workers is how many points are classified concurrently
		Workers int `yaml:"workers"`
	} `yaml:"classification"`

	// Lookup resources
	Resources struct {
		// LUTVariants lists the available color lookup tables, oldest first
		LUTVariants []LUTVariant `yaml:"lutVariants"`

		// FullNames is the category -> long structure names file
		FullNames string `yaml:"fullNames"`

		// ShortNames is the category -> acronyms file, aligned with FullNames
		ShortNames string `yaml:"shortNames"`
	} `yaml:"resources"`

	// Atlas volume parameters
	Atlas struct {
		// SliceDir holds the PNG label slices
		SliceDir string `yaml:"sliceDir"`

		// Transform is the row-major 4x4 RAS-to-voxel matrix
		Transform []float64 `yaml:"transform"`
	} `yaml:"atlas"`

	// Output parameters
	Output struct {
		// LogLevel is a zap level name (debug, info, warn, error)
		LogLevel string `yaml:"logLevel"`

		// LogFormat is "json" or "console"
		LogFormat string `yaml:"logFormat"`

		// Verbose prints every point outcome in the summary
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Classification.SideLength = 3
	cfg.Classification.Workers = 1

	cfg.Resources.LUTVariants = []LUTVariant{
		{Name: "20060522", Path: "Resources/Data/FreeSurferColorLUT20060522.txt"},
		{Name: "20120827", Path: "Resources/Data/FreeSurferColorLUT20120827.txt"},
		{Name: "20150729", Path: "Resources/Data/FreeSurferColorLUT20150729.txt"},
	}
	cfg.Resources.FullNames = "Resources/parc_fullnames.json"
	cfg.Resources.ShortNames = "Resources/parc_shortnames.json"

	identity := coords.Identity()
	cfg.Atlas.Transform = identity[:]

	cfg.Output.LogLevel = "info"
	cfg.Output.LogFormat = "console"
	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		return cfg, nil
	}

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, eris.Wrapf(models.ErrConfiguration, "config: read %s: %v", configPath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, eris.Wrapf(models.ErrConfiguration, "config: parse %s: %v", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return eris.Wrap(err, "config: create directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return eris.Wrap(err, "config: marshal")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return eris.Wrap(err, "config: write")
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}

// Validate checks the values a run depends on.
func (c *Config) Validate() error {
	if c.Classification.SideLength < 1 {
		return eris.Wrapf(models.ErrConfiguration,
			"config: sideLength must be at least 1 (got %d)", c.Classification.SideLength)
	}
	if c.Classification.Workers < 1 {
		return eris.Wrapf(models.ErrConfiguration,
			"config: workers must be at least 1 (got %d)", c.Classification.Workers)
	}
	if _, err := c.LUTPath(); err != nil {
		return err
	}
	if _, err := c.TransformMatrix(); err != nil {
		return err
	}
	return nil
}

// LUTPath returns the path of the selected lookup table variant.
func (c *Config) LUTPath() (string, error) {
	variants := c.Resources.LUTVariants
	if len(variants) == 0 {
		return "", eris.Wrap(models.ErrConfiguration, "config: no lookup table variants")
	}

	if c.Classification.LUTVariant == "" {
		return variants[len(variants)-1].Path, nil
	}
	for _, v := range variants {
		if v.Name == c.Classification.LUTVariant {
			return v.Path, nil
		}
	}
	return "", eris.Wrapf(models.ErrConfiguration,
		"config: unknown lookup table variant %q", c.Classification.LUTVariant)
}

// TransformMatrix returns the atlas transform as a fixed 4x4 matrix.
func (c *Config) TransformMatrix() ([16]float64, error) {
	var m [16]float64
	if len(c.Atlas.Transform) != 16 {
		return m, eris.Wrapf(models.ErrConfiguration,
			"config: atlas transform needs 16 values (got %d)", len(c.Atlas.Transform))
	}
	copy(m[:], c.Atlas.Transform)
	return m, nil
}

// InitLogger builds the global zap logger from the output settings.
func InitLogger(cfg *Config) error {
	var zapCfg zap.Config
	if cfg.Output.LogFormat == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Output.LogLevel)
	if err != nil {
		return eris.Wrapf(models.ErrConfiguration, "config: parse log level: %v", err)
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
