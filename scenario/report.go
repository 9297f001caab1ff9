package scenario

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cocosip/go-pixel-golden/compare"
	"github.com/cocosip/go-pixel-golden/frames"
)

var (
	// ErrDecoderPanic wraps a panic raised while running one scenario
	ErrDecoderPanic = errors.New("scenario panicked")

	// ErrNoFrames is returned when a frame scenario's sample is not a container
	ErrNoFrames = errors.New("sample has no frames")

	// ErrSampleMissing marks scenarios skipped because their sample is absent
	ErrSampleMissing = errors.New("sample missing")
)

// Status is the scenario-level verdict
type Status int

const (
	// Passed means every comparison matched
	Passed Status = iota
	// Failed means a decode, reference or comparison failure occurred
	Failed
	// Skipped means the scenario did not run (missing sample, cancellation)
	Skipped
)

func (s Status) String() string {
	switch s {
	case Passed:
		return "PASS"
	case Failed:
		return "FAIL"
	case Skipped:
		return "SKIP"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Report is the outcome of one scenario
type Report struct {
	RunID    string
	Scenario Scenario
	Status   Status
	Result   compare.Result  // primary-image comparison
	Frames   []frames.Result // per-frame results of frame scenarios
	Err      error           // first failure, or why the scenario was skipped
	Duration time.Duration
}

// Failed reports whether the scenario failed
func (r *Report) Failed() bool {
	return r.Status == Failed
}

// String returns a one-line verdict with its diagnostic
func (r *Report) String() string {
	if r.Err == nil {
		return fmt.Sprintf("%s %s", r.Status, r.Scenario.ID())
	}
	return fmt.Sprintf("%s %s: %v", r.Status, r.Scenario.ID(), r.Err)
}

// Details returns one line per evaluated frame, or the verdict line for
// single-image scenarios.
func (r *Report) Details() string {
	if len(r.Frames) == 0 {
		return r.String()
	}
	var b strings.Builder
	b.WriteString(r.String())
	for _, f := range r.Frames {
		b.WriteString("\n  ")
		switch {
		case f.Status == frames.Skipped:
			fmt.Fprintf(&b, "frame %s: not evaluated", f.Key)
		case f.Passed():
			fmt.Fprintf(&b, "frame %s: %s", f.Key, f.Compare)
		default:
			fmt.Fprintf(&b, "frame %s: %v", f.Key, f.Failure())
		}
	}
	return b.String()
}

// Summary counts reports by status
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// Summarize counts reports by status
func Summarize(reports []*Report) Summary {
	s := Summary{Total: len(reports)}
	for _, r := range reports {
		switch r.Status {
		case Passed:
			s.Passed++
		case Failed:
			s.Failed++
		case Skipped:
			s.Skipped++
		}
	}
	return s
}

// OK reports whether no scenario failed
func (s Summary) OK() bool {
	return s.Failed == 0
}

func (s Summary) String() string {
	return fmt.Sprintf("%d scenarios: %d passed, %d failed, %d skipped", s.Total, s.Passed, s.Failed, s.Skipped)
}
