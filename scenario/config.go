package scenario

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/cocosip/go-pixel-golden/codec"
	"github.com/cocosip/go-pixel-golden/compare"
	"github.com/cocosip/go-pixel-golden/frames"
)

// Config holds everything a Runner needs. There is no package-level state:
// two runners with different configs can run side by side.
type Config struct {
	SamplesDir     string `yaml:"samples_dir"`
	GoldenDir      string `yaml:"golden_dir"`
	PixelFormat    string `yaml:"pixel_format"`    // default format for scenarios that name none (default: argb32)
	BlockSize      int    `yaml:"block_size"`      // comparator block size in bytes (default: 32)
	CompareWorkers int    `yaml:"compare_workers"` // goroutines per block scan, 0 or 1 = sequential
	FramePolicy    string `yaml:"frame_policy"`    // collect-all, fail-fast
	FrameSeparator string `yaml:"frame_separator"` // joins sample name and frame key (default: "_")
	Parallelism    int    `yaml:"parallelism"`     // scenarios run at once by RunAll (default: 1)
	Streaming      bool   `yaml:"streaming"`       // compare primary buffers straight from the reference file

	// SkipMissingSamples turns a missing sample file into a skipped scenario
	SkipMissingSamples bool `yaml:"skip_missing_samples"`
}

// DefaultConfig returns a config with every optional field set
func DefaultConfig() Config {
	return Config{
		PixelFormat:    codec.ARGB32.Name,
		BlockSize:      compare.DefaultBlockSize,
		FramePolicy:    frames.CollectAll.String(),
		FrameSeparator: frames.DefaultSeparator,
		Parallelism:    1,
	}
}

// LoadConfig reads and parses a YAML configuration file. Relative sample and
// golden directories are resolved against the file's directory.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	base := filepath.Dir(path)
	cfg.SamplesDir = resolve(base, cfg.SamplesDir)
	cfg.GoldenDir = resolve(base, cfg.GoldenDir)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func resolve(base, dir string) string {
	if dir == "" || filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.PixelFormat == "" {
		c.PixelFormat = d.PixelFormat
	}
	if c.BlockSize == 0 {
		c.BlockSize = d.BlockSize
	}
	if c.FramePolicy == "" {
		c.FramePolicy = d.FramePolicy
	}
	if c.FrameSeparator == "" {
		c.FrameSeparator = d.FrameSeparator
	}
	if c.Parallelism == 0 {
		c.Parallelism = d.Parallelism
	}
}
