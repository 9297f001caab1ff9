// Package frames walks the sub-images of a container image and compares each
// one with its own golden reference.
package frames

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cocosip/go-pixel-golden/codec"
	"github.com/cocosip/go-pixel-golden/compare"
	"github.com/cocosip/go-pixel-golden/golden"
)

// DefaultSeparator joins a base identifier and a frame key
const DefaultSeparator = "_"

// Identifier returns the golden identifier of one frame
func Identifier(base, sep, key string) string {
	return base + sep + key
}

// Policy decides whether a walk continues after a failing frame
type Policy int

const (
	// CollectAll evaluates every frame
	CollectAll Policy = iota
	// FailFast stops after the first frame that does not pass
	FailFast
)

func (p Policy) String() string {
	switch p {
	case CollectAll:
		return "collect-all"
	case FailFast:
		return "fail-fast"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy resolves "collect-all" or "fail-fast"
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "collect-all":
		return CollectAll, nil
	case "fail-fast":
		return FailFast, nil
	default:
		return 0, fmt.Errorf("unknown frame policy %q (want collect-all or fail-fast)", s)
	}
}

// Status of one frame in a walk
type Status int

const (
	// Evaluated frames carry a comparison Result or an Err
	Evaluated Status = iota
	// Skipped frames were not evaluated because an earlier frame failed under FailFast
	Skipped
)

// Result is the outcome for one frame
type Result struct {
	Key        string
	Identifier string
	Status     Status
	Compare    compare.Result
	Err        error // decode, extraction or reference failure
}

// Passed reports whether the frame was evaluated and matched its reference
func (r Result) Passed() bool {
	return r.Status == Evaluated && r.Err == nil && r.Compare.Passed()
}

// Failure returns the frame's failure wrapped with its key, or nil
func (r Result) Failure() error {
	if r.Status != Evaluated {
		return nil
	}
	err := r.Err
	if err == nil {
		err = r.Compare.Err()
	}
	if err == nil {
		return nil
	}
	return &FrameError{Key: r.Key, Identifier: r.Identifier, Err: err}
}

// FrameError attaches a frame key to a failure
type FrameError struct {
	Key        string
	Identifier string
	Err        error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %q (%s): %v", e.Key, golden.Name(e.Identifier), e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// Walker compares the frames of containers against per-frame references
type Walker struct {
	Store      *golden.Store
	Comparator compare.Comparator
	Format     codec.PixelFormat
	Separator  string
	Policy     Policy
	Logger     *slog.Logger
}

func (w *Walker) separator() string {
	if w.Separator == "" {
		return DefaultSeparator
	}
	return w.Separator
}

func (w *Walker) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

// Walk compares every frame in order and returns one Result per frame. Under
// FailFast the frames after the first failure are returned as Skipped.
// Cancellation is checked between frames; a cancelled walk returns the frames
// evaluated so far together with ctx.Err().
func (w *Walker) Walk(ctx context.Context, base string, frames []codec.Frame) ([]Result, error) {
	if err := codec.ValidateFrames(frames); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(frames))
	failed := false
	for _, f := range frames {
		id := Identifier(base, w.separator(), f.Key)
		if failed && w.Policy == FailFast {
			results = append(results, Result{Key: f.Key, Identifier: id, Status: Skipped})
			continue
		}
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := w.compareFrame(f, id)
		results = append(results, res)
		if !res.Passed() {
			failed = true
			w.logger().Debug("frames: frame failed", "identifier", id, "error", res.Failure())
		}
	}
	return results, nil
}

func (w *Walker) compareFrame(f codec.Frame, id string) Result {
	res := Result{Key: f.Key, Identifier: id}

	pixels, err := f.Image.Pixels(w.Format)
	if err != nil {
		res.Err = fmt.Errorf("extract %s pixels: %w", w.Format, err)
		return res
	}

	ref, err := w.Store.Open(id)
	if err != nil {
		res.Err = err
		return res
	}
	defer func() {
		_ = ref.Close()
	}()

	res.Compare, res.Err = w.Comparator.CompareReader(pixels, ref, ref.Size)
	return res
}

// Aggregate returns the first failing frame's error, or nil when all passed
func Aggregate(results []Result) error {
	for _, r := range results {
		if err := r.Failure(); err != nil {
			return err
		}
	}
	return nil
}

// Failures returns the errors of all failing frames in walk order
func Failures(results []Result) []error {
	var errs []error
	for _, r := range results {
		if err := r.Failure(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// JoinFailures joins every frame failure into one error
func JoinFailures(results []Result) error {
	return errors.Join(Failures(results)...)
}
