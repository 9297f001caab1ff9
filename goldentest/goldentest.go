// Package goldentest binds golden scenarios to Go tests. Each scenario becomes
// one parallel subtest, so a failing sample never hides the others.
//
//	func TestGolden(t *testing.T) {
//		r := goldentest.NewRunner(t, "testdata/harness.yaml")
//		goldentest.RunSuite(t, r, "testdata/suite.yaml")
//	}
package goldentest

import (
	"testing"

	"github.com/cocosip/go-pixel-golden/scenario"
)

// NewRunner loads the harness config at path, failing t on error
func NewRunner(t testing.TB, path string, opts ...scenario.Option) *scenario.Runner {
	t.Helper()
	cfg, err := scenario.LoadConfig(path)
	if err != nil {
		t.Fatalf("load harness config: %v", err)
	}
	r, err := scenario.NewRunner(*cfg, opts...)
	if err != nil {
		t.Fatalf("create runner: %v", err)
	}
	return r
}

// RunSuite loads the suite manifest at path and runs it with Run
func RunSuite(t *testing.T, r *scenario.Runner, path string) {
	t.Helper()
	scenarios, err := scenario.LoadSuite(path)
	if err != nil {
		t.Fatalf("load suite: %v", err)
	}
	Run(t, r, scenarios...)
}

// Run executes each scenario in its own parallel subtest named after the
// scenario. Skipped scenarios call t.Skip; failures are reported with the
// per-frame breakdown.
func Run(t *testing.T, r *scenario.Runner, scenarios ...scenario.Scenario) {
	t.Helper()
	if err := scenario.ValidateScenarios(scenarios); err != nil {
		t.Fatalf("invalid scenarios: %v", err)
	}
	for _, sc := range scenarios {
		t.Run(sc.ID(), func(t *testing.T) {
			t.Parallel()
			Check(t, r, sc)
		})
	}
}

// Check runs one scenario in the current test and reports its verdict
func Check(t testing.TB, r *scenario.Runner, sc scenario.Scenario) *scenario.Report {
	t.Helper()
	rep := r.Run(t.Context(), sc)
	switch rep.Status {
	case scenario.Skipped:
		t.Skip(rep.String())
	case scenario.Failed:
		t.Error(rep.Details())
	}
	return rep
}
