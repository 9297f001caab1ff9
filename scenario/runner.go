// Package scenario runs golden scenarios: decode one sample, extract its pixels
// in the requested format and compare them with the stored reference(s).
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cocosip/go-pixel-golden/codec"
	"github.com/cocosip/go-pixel-golden/compare"
	"github.com/cocosip/go-pixel-golden/frames"
	"github.com/cocosip/go-pixel-golden/golden"
)

// Runner executes scenarios against one samples/golden directory pair
type Runner struct {
	cfg        Config
	registry   *codec.Registry
	store      *golden.Store
	comparator compare.Comparator
	format     codec.PixelFormat
	policy     frames.Policy
	logger     *slog.Logger
}

// Option configures a Runner
type Option func(*Runner)

// WithRegistry selects the decoder registry (default: codec.Default())
func WithRegistry(reg *codec.Registry) Option {
	return func(r *Runner) {
		r.registry = reg
	}
}

// WithLogger sets the logger (default: slog.Default())
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner validates cfg and builds a Runner
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	format, err := codec.ParsePixelFormat(cfg.PixelFormat)
	if err != nil {
		return nil, err
	}
	policy, err := frames.ParsePolicy(cfg.FramePolicy)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:        cfg,
		registry:   codec.Default(),
		store:      golden.NewStore(cfg.GoldenDir),
		comparator: compare.Comparator{BlockSize: cfg.BlockSize, Workers: cfg.CompareWorkers},
		format:     format,
		policy:     policy,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Config returns the validated configuration
func (r *Runner) Config() Config {
	return r.cfg
}

// Store returns the golden store
func (r *Runner) Store() *golden.Store {
	return r.store
}

// RunAll runs scenarios with at most Config.Parallelism in flight. Reports are
// returned in input order and share one run ID. Scenarios not yet started when
// ctx is cancelled are reported as Skipped.
func (r *Runner) RunAll(ctx context.Context, scenarios []Scenario) []*Report {
	runID := uuid.NewString()
	reports := make([]*Report, len(scenarios))

	sem := make(chan struct{}, r.cfg.Parallelism)
	var wg sync.WaitGroup
	for i, sc := range scenarios {
		if err := acquire(ctx, sem); err != nil {
			reports[i] = &Report{RunID: runID, Scenario: sc, Status: Skipped, Err: err}
			continue
		}

		wg.Add(1)
		go func(i int, sc Scenario) {
			defer wg.Done()
			defer func() { <-sem }()
			reports[i] = r.run(ctx, runID, sc)
		}(i, sc)
	}
	wg.Wait()

	r.logger.Info("scenario: run finished", "run_id", runID, "summary", Summarize(reports).String())
	return reports
}

func acquire(ctx context.Context, sem chan struct{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes one scenario under a fresh run ID. A panic raised while
// decoding or comparing is recovered into the scenario's own failure.
func (r *Runner) Run(ctx context.Context, sc Scenario) *Report {
	return r.run(ctx, uuid.NewString(), sc)
}

func (r *Runner) run(ctx context.Context, runID string, sc Scenario) (rep *Report) {
	start := time.Now()
	sc.normalize()
	rep = &Report{RunID: runID, Scenario: sc}
	defer func() {
		if p := recover(); p != nil {
			rep.Status = Failed
			rep.Err = fmt.Errorf("%w: %v", ErrDecoderPanic, p)
		}
		rep.Duration = time.Since(start)
		r.log(rep)
	}()

	if err := ctx.Err(); err != nil {
		rep.Status = Skipped
		rep.Err = err
		return rep
	}

	if err := r.check(ctx, sc, rep); err != nil {
		rep.Err = err
		if rep.Status != Skipped {
			rep.Status = Failed
		}
	}
	return rep
}

func (r *Runner) check(ctx context.Context, sc Scenario, rep *Report) error {
	format := r.format
	if sc.Format != "" {
		f, err := codec.ParsePixelFormat(sc.Format)
		if err != nil {
			return err
		}
		format = f
	}

	samplePath := filepath.Join(r.cfg.SamplesDir, filepath.FromSlash(sc.Identifier()))
	if r.cfg.SkipMissingSamples {
		if _, err := os.Stat(samplePath); errors.Is(err, os.ErrNotExist) {
			rep.Status = Skipped
			return fmt.Errorf("%w: %s", ErrSampleMissing, sc.Sample)
		}
	}

	dec, err := r.decoderFor(sc)
	if err != nil {
		return err
	}
	img, err := codec.DecodeFile(dec, sc.Sample, samplePath)
	if err != nil {
		return err
	}

	if sc.Frames {
		return r.walk(ctx, sc, img, format, rep)
	}

	pixels, err := img.Pixels(format)
	if err != nil {
		return fmt.Errorf("extract %s pixels: %w", format, err)
	}
	rep.Result, err = r.compare(pixels, sc.Identifier())
	if err != nil {
		return err
	}
	if err := rep.Result.Err(); err != nil {
		return fmt.Errorf("%s: %w", golden.Name(sc.Identifier()), err)
	}
	return nil
}

func (r *Runner) walk(ctx context.Context, sc Scenario, img codec.Image, format codec.PixelFormat, rep *Report) error {
	fs := codec.FramesOf(img)
	if len(fs) == 0 {
		return fmt.Errorf("%w: %s", ErrNoFrames, sc.Sample)
	}

	w := &frames.Walker{
		Store:      r.store,
		Comparator: r.comparator,
		Format:     format,
		Separator:  r.cfg.FrameSeparator,
		Policy:     r.policy,
		Logger:     r.logger,
	}
	results, err := w.Walk(ctx, sc.Identifier(), fs)
	rep.Frames = results
	if err != nil {
		return err
	}
	return frames.Aggregate(results)
}

func (r *Runner) decoderFor(sc Scenario) (codec.Decoder, error) {
	var (
		dec codec.Decoder
		err error
	)
	if sc.Decoder != "" {
		dec, err = r.registry.Get(sc.Decoder)
	} else {
		dec, err = r.registry.ForPath(sc.Sample)
	}
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", sc.Sample, err)
	}
	return dec, nil
}

// compare checks pixels against the reference stored under id
func (r *Runner) compare(pixels []byte, id string) (compare.Result, error) {
	if !r.cfg.Streaming {
		expected, err := r.store.Load(id)
		if err != nil {
			return compare.Result{}, err
		}
		return r.comparator.Compare(pixels, expected), nil
	}

	ref, err := r.store.Open(id)
	if err != nil {
		return compare.Result{}, err
	}
	defer func() {
		_ = ref.Close()
	}()
	return r.comparator.CompareReader(pixels, ref, ref.Size)
}

// Compare decodes an encoded image held in memory, extracts it in format and
// compares it with the reference stored under id. The decoder is chosen by the
// extension of id.
func (r *Runner) Compare(encoded []byte, format codec.PixelFormat, id string) (compare.Result, error) {
	dec, err := r.registry.ForPath(id)
	if err != nil {
		return compare.Result{}, err
	}
	img, err := codec.Decode(dec, id, encoded)
	if err != nil {
		return compare.Result{}, err
	}
	pixels, err := img.Pixels(format)
	if err != nil {
		return compare.Result{}, fmt.Errorf("extract %s pixels: %w", format, err)
	}
	return r.compare(pixels, id)
}

func (r *Runner) log(rep *Report) {
	attrs := []any{
		"run_id", rep.RunID,
		"scenario", rep.Scenario.ID(),
		"category", string(rep.Scenario.Category),
		"duration", rep.Duration,
	}
	switch rep.Status {
	case Passed:
		r.logger.Info("scenario: passed", attrs...)
	case Skipped:
		r.logger.Info("scenario: skipped", append(attrs, "reason", rep.Err)...)
	default:
		r.logger.Warn("scenario: failed", append(attrs, "error", rep.Err)...)
	}
}
