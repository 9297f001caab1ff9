package scenario

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category labels what kind of sample a scenario exercises. Categories share
// one logic path; they only document which sample/golden pairs are supplied.
type Category string

const (
	// Natural is a single-frame camera image
	Natural Category = "natural"
	// Derived is a single image reconstructed from a grid or an overlay
	Derived Category = "derived"
	// Collection is a multi-frame container compared frame by frame
	Collection Category = "collection"
	// Alpha is a single-frame image carrying an alpha channel
	Alpha Category = "alpha"
)

func (c Category) valid() bool {
	switch c {
	case Natural, Derived, Collection, Alpha:
		return true
	}
	return false
}

// Scenario binds one sample to its pixel format request and golden reference(s)
type Scenario struct {
	Name     string   `yaml:"name"`         // defaults to Sample
	Sample   string   `yaml:"sample"`       // slash-separated path under the samples dir
	Category Category `yaml:"category"`     // defaults to natural
	Format   string   `yaml:"pixel_format"` // overrides Config.PixelFormat
	Decoder  string   `yaml:"decoder"`      // decoder name; by default chosen by extension

	// Frames compares every frame of the container against "<sample>_<key>.bin"
	// instead of the primary image against "<sample>.bin". Collections imply it.
	Frames bool `yaml:"frames"`
}

// ID returns the scenario name, falling back to the sample path
func (s Scenario) ID() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Sample
}

// Identifier returns the golden identifier of the sample: its slash-separated path
func (s Scenario) Identifier() string {
	return path.Clean(strings.ReplaceAll(s.Sample, `\`, "/"))
}

func (s *Scenario) normalize() {
	if s.Category == "" {
		s.Category = Natural
	}
	if s.Category == Collection {
		s.Frames = true
	}
}

// Suite is the YAML document listing scenarios
type Suite struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadSuite reads a YAML suite manifest
func LoadSuite(file string) ([]Scenario, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	var suite Suite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse suite: %w", err)
	}
	if err := ValidateScenarios(suite.Scenarios); err != nil {
		return nil, fmt.Errorf("invalid suite: %w", err)
	}
	return suite.Scenarios, nil
}

// ValidateScenarios normalizes scenarios in place and checks that each names a
// sample, has a known category and a unique ID.
func ValidateScenarios(scenarios []Scenario) error {
	var errs []error
	seen := make(map[string]bool, len(scenarios))
	for i := range scenarios {
		sc := &scenarios[i]
		sc.normalize()
		if sc.Sample == "" {
			errs = append(errs, fmt.Errorf("scenario %d: sample is required", i))
			continue
		}
		if !sc.Category.valid() {
			errs = append(errs, fmt.Errorf("scenario %s: unknown category %q", sc.ID(), sc.Category))
		}
		if seen[sc.ID()] {
			errs = append(errs, fmt.Errorf("scenario %s: duplicate name", sc.ID()))
		}
		seen[sc.ID()] = true
	}
	return errors.Join(errs...)
}
