// Package config manages the configuration file of repbytes.
package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/kopia/repbytes/feature"
	"github.com/kopia/repbytes/internal/compression"
	"github.com/kopia/repbytes/repeat"
)

// Config is the configuration of repbytes.
type Config struct {
	Detection DetectionConfig `yaml:"detection"`
	Policy    PolicyConfig    `yaml:"policy"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
}

// DetectionConfig controls repetition searches.
type DetectionConfig struct {
	// MaxAttempts is the number of candidate widths tested before aborting, -1 means unlimited.
	MaxAttempts int `yaml:"max_attempts"`
}

// PolicyConfig decides which repetition is reported.
type PolicyConfig struct {
	MinExcessBytes int64   `yaml:"min_excess_bytes"`
	MinRatio       float64 `yaml:"min_ratio"`
	MaxPreviewSize int     `yaml:"max_preview_size"`
}

// ArtifactsConfig describes where deduplicated content is written.
type ArtifactsConfig struct {
	Dir         string `yaml:"dir"`
	Compression string `yaml:"compression"`
}

// Default returns the default configuration.
func Default() *Config {
	p := feature.DefaultPolicy()

	return &Config{
		Detection: DetectionConfig{MaxAttempts: repeat.DefaultMaxAttempts},
		Policy: PolicyConfig{
			MinExcessBytes: p.MinExcessBytes,
			MinRatio:       p.MinRatio,
			MaxPreviewSize: p.MaxPreviewSize,
		},
		Artifacts: ArtifactsConfig{Compression: string(compression.None)},
	}
}

// FeaturePolicy returns the feature policy described by the configuration.
func (c *Config) FeaturePolicy() feature.Policy {
	return feature.Policy{
		MinExcessBytes: c.Policy.MinExcessBytes,
		MinRatio:       c.Policy.MinRatio,
		MaxPreviewSize: c.Policy.MaxPreviewSize,
	}
}

// DetectOptions returns the options for repeat.Detect.
func (c *Config) DetectOptions() repeat.Options {
	return repeat.Options{MaxAttempts: c.Detection.MaxAttempts}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Detection.MaxAttempts < repeat.Unlimited {
		return errors.Errorf("invalid max_attempts: %v", c.Detection.MaxAttempts)
	}

	if c.Policy.MinExcessBytes < 0 {
		return errors.Errorf("invalid min_excess_bytes: %v", c.Policy.MinExcessBytes)
	}

	if c.Policy.MinRatio < 0 {
		return errors.Errorf("invalid min_ratio: %v", c.Policy.MinRatio)
	}

	if c.Policy.MaxPreviewSize < 0 {
		return errors.Errorf("invalid max_preview_size: %v", c.Policy.MaxPreviewSize)
	}

	if _, err := compression.Get(compression.Name(c.Artifacts.Compression)); err != nil {
		return errors.Wrap(err, "invalid artifacts.compression")
	}

	return nil
}

// Load reads the configuration from the specified reader, on top of the defaults.
func (c *Config) Load(r io.Reader) error {
	*c = *Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "unable to parse configuration")
	}

	return c.Validate()
}

// Save writes the configuration to the specified writer.
func (c *Config) Save(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2) //nolint:mnd

	if err := enc.Encode(c); err != nil {
		return errors.Wrap(err, "unable to write configuration")
	}

	return errors.Wrap(enc.Close(), "unable to write configuration")
}

// LoadFromFile reads the configuration from the specified file. Empty file name returns the defaults.
func LoadFromFile(fileName string) (*Config, error) {
	if fileName == "" {
		return Default(), nil
	}

	f, err := os.Open(fileName) //nolint:gosec
	if err != nil {
		return nil, errors.Wrap(err, "unable to open configuration file")
	}
	defer f.Close() //nolint:errcheck

	var c Config

	if err := c.Load(f); err != nil {
		return nil, errors.Wrapf(err, "invalid configuration file %v", fileName)
	}

	return &c, nil
}
