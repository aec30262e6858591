package bundle

import (
	"fmt"
	"math"

	"github.com/matzehuels/edgebundle/pkg/errors"
)

// CurveType selects how final control points are interpolated.
type CurveType string

// Supported curve types.
const (
	CurveLinear     CurveType = "linear"
	CurveBasis      CurveType = "basis"
	CurveCardinal   CurveType = "cardinal"
	CurveCatmullRom CurveType = "catmull-rom"
)

// SmoothingType selects the smoothing kernel.
type SmoothingType string

// Supported smoothing modes.
const (
	SmoothingLaplacian SmoothingType = "laplacian"
	SmoothingGaussian  SmoothingType = "gaussian"
	SmoothingBilateral SmoothingType = "bilateral"
)

// Default configuration values.
const (
	DefaultSubdivisions           = 10
	DefaultCompatibilityThreshold = 0.6
	DefaultIterations             = 60
	DefaultStepSize               = 0.1
	DefaultStiffness              = 0.1
	DefaultMomentum               = 0.5
	DefaultCurveType              = CurveBasis
	DefaultCurveTension           = 0.5
	DefaultSmoothingType          = SmoothingLaplacian
	DefaultSmoothingIterations    = 1
	DefaultSmoothingFrequency     = 10
)

// ValidCurveTypes is the set of supported curve types.
var ValidCurveTypes = map[CurveType]bool{
	CurveLinear:     true,
	CurveBasis:      true,
	CurveCardinal:   true,
	CurveCatmullRom: true,
}

// ValidSmoothingTypes is the set of supported smoothing modes.
var ValidSmoothingTypes = map[SmoothingType]bool{
	SmoothingLaplacian: true,
	SmoothingGaussian:  true,
	SmoothingBilateral: true,
}

// Config controls a bundling run. Start from [DefaultConfig]; the zero value
// is valid but bundles nothing (no subdivisions, no iterations).
type Config struct {
	// Subdivisions is the number of interior control points per edge.
	// Values <= 0 leave edges as straight segments.
	Subdivisions int `json:"subdivisions" toml:"subdivisions" yaml:"subdivisions"`

	// AdaptiveSubdivision scales the interior point count with chord length
	// relative to ReferenceLength.
	AdaptiveSubdivision bool `json:"adaptive_subdivision" toml:"adaptive_subdivision" yaml:"adaptive_subdivision"`

	// ReferenceLength is the chord length that receives exactly Subdivisions
	// interior points in adaptive mode. Zero uses the mean chord length.
	ReferenceLength float64 `json:"reference_length,omitempty" toml:"reference_length" yaml:"reference_length"`

	// CompatibilityThreshold prunes edge pairs scoring below it. Clamped to [0,1].
	CompatibilityThreshold float64 `json:"compatibility_threshold" toml:"compatibility_threshold" yaml:"compatibility_threshold"`

	Iterations int     `json:"iterations" toml:"iterations" yaml:"iterations"`
	StepSize   float64 `json:"step_size" toml:"step_size" yaml:"step_size"`
	Stiffness  float64 `json:"stiffness" toml:"stiffness" yaml:"stiffness"`
	Momentum   float64 `json:"momentum" toml:"momentum" yaml:"momentum"`

	CurveType    CurveType `json:"curve_type" toml:"curve_type" yaml:"curve_type"`
	CurveTension float64   `json:"curve_tension" toml:"curve_tension" yaml:"curve_tension"`

	SmoothingType       SmoothingType `json:"smoothing_type" toml:"smoothing_type" yaml:"smoothing_type"`
	SmoothingIterations int           `json:"smoothing_iterations" toml:"smoothing_iterations" yaml:"smoothing_iterations"`
	SmoothingFrequency  int           `json:"smoothing_frequency" toml:"smoothing_frequency" yaml:"smoothing_frequency"`

	// CompatibilityFunc replaces the default pair scoring when set.
	CompatibilityFunc CompatibilityFunc `json:"-" toml:"-" yaml:"-"`
}

// DefaultConfig returns the recommended configuration.
func DefaultConfig() Config {
	return Config{
		Subdivisions:           DefaultSubdivisions,
		CompatibilityThreshold: DefaultCompatibilityThreshold,
		Iterations:             DefaultIterations,
		StepSize:               DefaultStepSize,
		Stiffness:              DefaultStiffness,
		Momentum:               DefaultMomentum,
		CurveType:              DefaultCurveType,
		CurveTension:           DefaultCurveTension,
		SmoothingType:          DefaultSmoothingType,
		SmoothingIterations:    DefaultSmoothingIterations,
		SmoothingFrequency:     DefaultSmoothingFrequency,
	}
}

// Validate checks c strictly. The engine itself never rejects a config (see
// [Config.Normalize]); Validate is for front ends that prefer to report
// mistakes instead of silently correcting them.
func (c Config) Validate() error {
	if !ValidCurveTypes[c.CurveType] {
		return errors.New(errors.ErrCodeInvalidCurveType,
			"invalid curve type: %q (must be one of: linear, basis, cardinal, catmull-rom)", c.CurveType)
	}
	if !ValidSmoothingTypes[c.SmoothingType] {
		return errors.New(errors.ErrCodeInvalidSmoothing,
			"invalid smoothing type: %q (must be one of: laplacian, gaussian, bilateral)", c.SmoothingType)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"compatibility_threshold", c.CompatibilityThreshold},
		{"stiffness", c.Stiffness},
		{"momentum", c.Momentum},
		{"curve_tension", c.CurveTension},
	} {
		if !(f.v >= 0 && f.v <= 1) {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be in [0,1], got %g", f.name, f.v)
		}
	}
	if !(c.StepSize >= 0) || math.IsInf(c.StepSize, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "step_size must be a non-negative number, got %g", c.StepSize)
	}
	if c.Iterations < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "iterations cannot be negative")
	}
	if c.SmoothingIterations < 0 || c.SmoothingFrequency < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "smoothing counts cannot be negative")
	}
	if c.ReferenceLength < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "reference_length cannot be negative")
	}
	return nil
}

// Normalize returns a copy of c with every field forced into its valid
// range. Unit-interval fields are clamped, negative counts become zero and
// unknown curve or smoothing types fall back to the defaults.
func (c Config) Normalize() Config {
	n, _ := c.normalize()
	return n
}

// normalize is Normalize plus a description of every correction it made.
func (c Config) normalize() (Config, []string) {
	var notes []string
	note := func(format string, args ...any) { notes = append(notes, fmt.Sprintf(format, args...)) }

	clamp := func(name string, v *float64) {
		if c := clampUnit(*v); c != *v {
			note("%s %g clamped to %g", name, *v, c)
			*v = c
		}
	}
	clamp("compatibility_threshold", &c.CompatibilityThreshold)
	clamp("stiffness", &c.Stiffness)
	clamp("momentum", &c.Momentum)
	clamp("curve_tension", &c.CurveTension)

	if !(c.StepSize >= 0) || math.IsInf(c.StepSize, 0) {
		note("step_size %g replaced with 0", c.StepSize)
		c.StepSize = 0
	}
	if c.Subdivisions < 0 {
		c.Subdivisions = 0
	}
	if c.Iterations < 0 {
		note("iterations %d replaced with 0", c.Iterations)
		c.Iterations = 0
	}
	if c.SmoothingIterations < 0 {
		c.SmoothingIterations = 0
	}
	if c.SmoothingFrequency < 0 {
		c.SmoothingFrequency = 0
	}
	if !(c.ReferenceLength >= 0) || math.IsInf(c.ReferenceLength, 0) {
		c.ReferenceLength = 0
	}
	if !ValidCurveTypes[c.CurveType] {
		note("unknown curve type %q, using %s", c.CurveType, DefaultCurveType)
		c.CurveType = DefaultCurveType
	}
	if !ValidSmoothingTypes[c.SmoothingType] {
		note("unknown smoothing type %q, using %s", c.SmoothingType, DefaultSmoothingType)
		c.SmoothingType = DefaultSmoothingType
	}
	return c, notes
}

// ParseCurveType converts a user-supplied name into a CurveType.
func ParseCurveType(s string) (CurveType, error) {
	ct := CurveType(s)
	if !ValidCurveTypes[ct] {
		return "", errors.New(errors.ErrCodeInvalidCurveType,
			"invalid curve type: %q (must be one of: linear, basis, cardinal, catmull-rom)", s)
	}
	return ct, nil
}

// ParseSmoothingType converts a user-supplied name into a SmoothingType.
func ParseSmoothingType(s string) (SmoothingType, error) {
	st := SmoothingType(s)
	if !ValidSmoothingTypes[st] {
		return "", errors.New(errors.ErrCodeInvalidSmoothing,
			"invalid smoothing type: %q (must be one of: laplacian, gaussian, bilateral)", s)
	}
	return st, nil
}

// clampUnit clamps v to [0,1]. NaN maps to 0.
func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
