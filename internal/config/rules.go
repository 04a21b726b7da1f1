package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Point is an expected landmark coordinate.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// SignatureRule describes the expected signature block.
type SignatureRule struct {
	X           int    `yaml:"x"`
	Y           int    `yaml:"y"`
	MinFontSize int    `yaml:"min_font_size"`
	Format      string `yaml:"format"`
}

// KeyConceptsRule describes the expected Key Concepts row.
type KeyConceptsRule struct {
	Y         int `yaml:"y"`
	Tolerance int `yaml:"tolerance"`
}

// Expectations holds expected landmark positions and tolerances.
type Expectations struct {
	PositionTolerance int `yaml:"position_tolerance"`
	OddballTolerance  int `yaml:"oddball_tolerance"`

	Title           Point           `yaml:"title"`
	Signature       SignatureRule   `yaml:"signature"`
	DesktopMockup   Point           `yaml:"desktop_mockup"`
	MobileMockup    Point           `yaml:"mobile_mockup"`
	AnnotationPanel Point           `yaml:"annotation_panel"`
	KeyConcepts     KeyConceptsRule `yaml:"key_concepts"`
}

// DefaultExpectations returns the house layout.
func DefaultExpectations() Expectations {
	return Expectations{
		PositionTolerance: 5,
		OddballTolerance:  10,
		Title:             Point{X: 960, Y: 28},
		Signature: SignatureRule{
			X:           40,
			Y:           1060,
			MinFontSize: 18,
			Format:      `^[0-9]{3}:[0-9]{2} \| .+ \| ScriptHammer$`,
		},
		DesktopMockup:   Point{X: 40, Y: 60},
		MobileMockup:    Point{X: 1360, Y: 60},
		AnnotationPanel: Point{X: 40, Y: 800},
		KeyConcepts:     KeyConceptsRule{Y: 940, Tolerance: 50},
	}
}

// LoadExpectations overlays the YAML file at path on the defaults. Keys
// missing from the file keep their default values.
func LoadExpectations(path string) (Expectations, error) {
	exp := DefaultExpectations()
	data, err := os.ReadFile(path)
	if err != nil {
		return exp, fmt.Errorf("read rules: %w", err)
	}
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return exp, fmt.Errorf("parse rules %s: %w", path, err)
	}
	return exp, nil
}

// ApplyRulesFile loads RulesFile, if set, into c.Expectations. Tolerances
// set in the environment still win over the file.
func (c *Config) ApplyRulesFile() error {
	if c.RulesFile == "" {
		return nil
	}
	exp, err := LoadExpectations(c.RulesFile)
	if err != nil {
		return err
	}
	exp.applyEnv()
	c.Expectations = exp
	return nil
}

func (e *Expectations) applyEnv() {
	e.PositionTolerance = envInt("WIRECHECK_POSITION_TOLERANCE", e.PositionTolerance)
	e.OddballTolerance = envInt("WIRECHECK_ODDBALL_TOLERANCE", e.OddballTolerance)
	e.KeyConcepts.Tolerance = envInt("WIRECHECK_KEY_CONCEPTS_TOLERANCE", e.KeyConcepts.Tolerance)
}

// Validate checks tolerances and the signature grammar.
func (e Expectations) Validate() error {
	if e.PositionTolerance < 0 {
		return fmt.Errorf("position tolerance must be >= 0, got %d", e.PositionTolerance)
	}
	if e.OddballTolerance <= 0 {
		return fmt.Errorf("oddball tolerance must be > 0, got %d", e.OddballTolerance)
	}
	if e.KeyConcepts.Tolerance < 0 {
		return fmt.Errorf("key concepts tolerance must be >= 0, got %d", e.KeyConcepts.Tolerance)
	}
	if _, err := regexp.Compile(e.Signature.Format); err != nil {
		return fmt.Errorf("signature format: %w", err)
	}
	return nil
}

// SignatureFormat compiles the signature grammar, falling back to the
// default when the configured one is invalid.
func (e Expectations) SignatureFormat() *regexp.Regexp {
	re, err := regexp.Compile(e.Signature.Format)
	if err != nil {
		return regexp.MustCompile(DefaultExpectations().Signature.Format)
	}
	return re
}
