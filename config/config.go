// Package config provides configuration loading for a search run. A run is
// fully described by one YAML document; embedded defaults keep the zero-config
// path working.
package config

import (
	_ "embed"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/modelsel/gbsearch/evaluate"
	"github.com/modelsel/gbsearch/grid"
	"github.com/modelsel/gbsearch/pkg/errors"
	"github.com/modelsel/gbsearch/rank"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all run parameters.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Grid       grid.Axes        `yaml:"grid"`
	Evaluation evaluate.Options `yaml:"evaluation"`
	Ranking    rank.Options     `yaml:"ranking"`
	Search     SearchConfig     `yaml:"search"`
	Output     OutputConfig     `yaml:"output"`
	Log        LogConfig        `yaml:"log"`
}

// DataConfig locates the input table.
type DataConfig struct {
	// Path to the input CSV. The last column is the target unless
	// TargetColumn names another one.
	Path         string `yaml:"path"`
	TargetColumn string `yaml:"target_column"`
}

// SearchConfig holds the coordinator parameters.
type SearchConfig struct {
	// Workers is the goroutine pool size; 0 means one per CPU.
	Workers int `yaml:"workers"`
	// ChunkSize is the number of configurations dispatched between
	// cancellation checks.
	ChunkSize int `yaml:"chunk_size"`
}

// OutputConfig holds the artifact destination.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads configuration from a YAML file, merging over embedded defaults.
// An empty path loads only the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, errors.Wrap(err, "parsing embedded defaults")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}
		// Unmarshal into the same struct; only fields present in the file
		// overwrite the defaults.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing config file %s", path)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if err := c.Evaluation.Validate(); err != nil {
		return err
	}
	if err := c.Ranking.WithDefaults().Weights.Validate(); err != nil {
		return err
	}
	if c.Search.Workers < 0 {
		return errors.NewValidationError("search.workers", "must be >= 0", c.Search.Workers)
	}
	if c.Search.ChunkSize < 0 {
		return errors.NewValidationError("search.chunk_size", "must be >= 0", c.Search.ChunkSize)
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing config file %s", path)
	}
	return nil
}
