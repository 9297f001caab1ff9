package scenario

import (
	"errors"
	"fmt"
	"os"

	"github.com/cocosip/go-pixel-golden/codec"
	"github.com/cocosip/go-pixel-golden/frames"
)

// Validate fills unset optional fields with defaults and checks the rest
func Validate(cfg *Config) error {
	cfg.applyDefaults()

	var errs []error
	if cfg.SamplesDir == "" {
		errs = append(errs, errors.New("samples_dir is required"))
	} else if err := checkDir(cfg.SamplesDir); err != nil {
		errs = append(errs, fmt.Errorf("samples_dir: %w", err))
	}
	if cfg.GoldenDir == "" {
		errs = append(errs, errors.New("golden_dir is required"))
	} else if err := checkDir(cfg.GoldenDir); err != nil {
		errs = append(errs, fmt.Errorf("golden_dir: %w", err))
	}

	if _, err := codec.ParsePixelFormat(cfg.PixelFormat); err != nil {
		errs = append(errs, fmt.Errorf("pixel_format: %w", err))
	}
	if cfg.BlockSize < 1 {
		errs = append(errs, fmt.Errorf("block_size must be >= 1, got %d", cfg.BlockSize))
	}
	if cfg.CompareWorkers < 0 {
		errs = append(errs, fmt.Errorf("compare_workers must be >= 0, got %d", cfg.CompareWorkers))
	}
	if _, err := frames.ParsePolicy(cfg.FramePolicy); err != nil {
		errs = append(errs, fmt.Errorf("frame_policy: %w", err))
	}
	if cfg.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("parallelism must be >= 1, got %d", cfg.Parallelism))
	}
	return errors.Join(errs...)
}

func checkDir(dir string) error {
	st, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !st.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
