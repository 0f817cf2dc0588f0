package mrcz

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-mrcz/internal/filter"
)

// Config is the YAML form of the write settings, used by the command-line
// tool. Environment variables in the file are expanded before parsing.
//
//	compressor: zstd
//	level: 3
//	block_size: 1048576
//	threads: 4
//	pixel_size: [1.2, 2.6, 3.4]
//	pixel_unit: Å
//	voltage: 300
//	meta:
//	  operator: ${USER}
type Config struct {
	Kind       string         `yaml:"kind"`
	Compressor string         `yaml:"compressor"`
	Level      *int           `yaml:"level"`
	BlockSize  int            `yaml:"block_size"`
	Threads    int            `yaml:"threads"`
	Shuffle    *bool          `yaml:"shuffle"`
	Checksum   *bool          `yaml:"checksum"`
	PixelSize  []float32      `yaml:"pixel_size"`
	PixelUnit  string         `yaml:"pixel_unit"`
	Voltage    *float32       `yaml:"voltage"`
	C3         *float32       `yaml:"c3"`
	Gain       *float32       `yaml:"gain"`
	Labels     []string       `yaml:"labels"`
	Meta       map[string]any `yaml:"meta"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	c := new(Config)
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(b))), c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filename, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return c, nil
}

// Validate checks the fields that WriteFile would otherwise reject late.
func (c *Config) Validate() error {
	comp, err := filter.ParseCompressor(c.Compressor)
	if err != nil {
		return err
	}
	if c.Level != nil {
		if err := comp.ValidateLevel(*c.Level); err != nil {
			return err
		}
	}
	if c.Kind != "" {
		if _, err := ParseKind(c.Kind); err != nil {
			return err
		}
	}
	if len(c.PixelSize) != 0 && len(c.PixelSize) != 3 {
		return fmt.Errorf("%w: pixel_size needs 3 values, got %d", ErrOutOfRange, len(c.PixelSize))
	}
	return nil
}

// WriteOptions converts the config into options for WriteFile. Fields left
// unset keep the WriteFile defaults.
func (c *Config) WriteOptions() []WriteOption {
	var opts []WriteOption
	if c.Kind != "" {
		if k, err := ParseKind(c.Kind); err == nil {
			opts = append(opts, WithKind(k))
		}
	}
	if c.Compressor != "" {
		opts = append(opts, WithCompressor(c.Compressor))
	}
	if c.Level != nil {
		opts = append(opts, WithLevel(*c.Level))
	}
	if c.BlockSize != 0 {
		opts = append(opts, WithBlockSize(c.BlockSize))
	}
	if c.Threads != 0 {
		opts = append(opts, WithThreads(c.Threads))
	}
	if c.Shuffle != nil {
		opts = append(opts, WithShuffle(*c.Shuffle))
	}
	if c.Checksum != nil {
		opts = append(opts, WithChecksum(*c.Checksum))
	}
	if len(c.PixelSize) == 3 {
		opts = append(opts, WithPixelSize(c.PixelSize[0], c.PixelSize[1], c.PixelSize[2]))
	}
	if c.PixelUnit != "" {
		opts = append(opts, WithPixelUnit(c.PixelUnit))
	}
	if c.Voltage != nil {
		opts = append(opts, WithVoltage(*c.Voltage))
	}
	if c.C3 != nil {
		opts = append(opts, WithC3(*c.C3))
	}
	if c.Gain != nil {
		opts = append(opts, WithGain(*c.Gain))
	}
	for _, l := range c.Labels {
		opts = append(opts, WithLabel(l))
	}
	if len(c.Meta) > 0 {
		opts = append(opts, WithMeta(c.Meta))
	}
	return opts
}
