// Package pipeline provides the parse → bundle → render pipeline.
//
// This package implements the complete pipeline shared by the CLI and the
// HTTP server. By centralizing it, both entry points agree on defaults,
// validation, caching and output formats.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Decode an edge document (JSON) or lay out a DOT graph
//  2. Bundle: Run the force-directed edge bundling engine
//  3. Render: Write the results as SVG, JSON, PDF or PNG
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Formats = []string{"svg", "json"}
//	result, err := runner.ExecuteInput(ctx, data, "graph.dot", opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Rendered artifacts are cached by the hash of the edge document and the
// options. Runs with a custom compatibility function are never cached
// because the function cannot be hashed.
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/edgebundle/pkg/bundle"
	"github.com/matzehuels/edgebundle/pkg/cache"
	"github.com/matzehuels/edgebundle/pkg/errors"
	edgeio "github.com/matzehuels/edgebundle/pkg/io"
	"github.com/matzehuels/edgebundle/pkg/render/sink"
	"github.com/matzehuels/edgebundle/pkg/source/dot"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultMargin is the default space around rendered paths.
const DefaultMargin = sink.DefaultMargin

// DefaultScale is the PNG scale factor.
const DefaultScale = 2.0

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// Input format constants.
const (
	InputJSON = "json"
	InputDOT  = "dot"
)

// ValidInputFormats is the set of supported input formats.
var ValidInputFormats = map[string]bool{
	InputJSON: true,
	InputDOT:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	InputFormat string `json:"input_format,omitempty"` // json or dot; detected from the source name when empty
	Layout      string `json:"layout,omitempty"`       // Graphviz layout engine for DOT input

	// Bundle options
	Config bundle.Config `json:"config"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	Margin      *float64 `json:"margin,omitempty"`
	Background  string   `json:"background,omitempty"`
	Stroke      string   `json:"stroke,omitempty"`       // Default stroke for edges without their own style
	StrokeWidth float64  `json:"stroke_width,omitempty"` // Default stroke width
	Opacity     float64  `json:"opacity,omitempty"`      // Default stroke opacity

	// Refresh skips the cache lookup; the fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// MaxControlPoints bounds the control points a run may allocate; zero
	// means no limit. It is set by the caller, never by a request body.
	MaxControlPoints int `json:"-"`

	// Runtime options (not serialized)
	Logger   *log.Logger                `json:"-"`
	Progress func(iteration, total int) `json:"-"`
}

// DefaultOptions returns options with the default bundling config and SVG
// output.
func DefaultOptions() Options {
	return Options{
		Config:  bundle.DefaultConfig(),
		Formats: []string{FormatSVG},
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the parsed input.
	Document *edgeio.Document

	// Results holds one bundled path per input edge. It is nil when the
	// artifacts came from the cache.
	Results []bundle.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the artifacts came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Edges      int
	ParseTime  time.Duration
	BundleTime time.Duration
	RenderTime time.Duration

	// Bundle holds the engine statistics of the run that produced the
	// artifacts, which for a cache hit is an earlier run.
	Bundle bundle.Stats
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateInputFormat checks that an input format is valid.
func ValidateInputFormat(format string) error {
	if !ValidInputFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid input format: %q (must be one of: json, dot)", format)
	}
	return nil
}

// ValidateLayout checks that a Graphviz layout engine is supported.
func ValidateLayout(layout string) error {
	if !dot.ValidLayouts[dot.Layout(layout)] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid layout: %q (must be one of: dot, neato, fdp, sfdp, circo, twopi)", layout)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetParseDefaults sets default values for parsing.
func (o *Options) SetParseDefaults() {
	if o.Layout == "" {
		o.Layout = string(dot.DefaultLayout)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForParse validates and sets defaults for parsing.
func (o *Options) ValidateForParse() error {
	o.SetParseDefaults()
	if o.InputFormat != "" {
		if err := ValidateInputFormat(o.InputFormat); err != nil {
			return err
		}
	}
	return ValidateLayout(o.Layout)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Margin == nil {
		m := DefaultMargin
		o.Margin = &m
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for bundling and rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if o.Width < 0 || o.Height < 0 || *o.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "width, height and margin cannot be negative")
	}
	if o.StrokeWidth < 0 || o.Opacity < 0 || o.Opacity > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "stroke_width must be >= 0 and opacity in [0,1]")
	}
	return nil
}

// Cacheable reports whether results for these options can be cached.
func (o *Options) Cacheable() bool {
	return o.Config.CompatibilityFunc == nil
}

// ResultKeyOpts returns cache key options for the rendered artifacts.
func (o *Options) ResultKeyOpts(configHash string) cache.ResultKeyOpts {
	margin := DefaultMargin
	if o.Margin != nil {
		margin = *o.Margin
	}
	return cache.ResultKeyOpts{
		ConfigHash:  configHash,
		Formats:     o.Formats,
		Width:       o.Width,
		Height:      o.Height,
		Margin:      margin,
		Background:  o.Background,
		Stroke:      o.Stroke,
		StrokeWidth: o.StrokeWidth,
		Opacity:     o.Opacity,
	}
}

// baseStyle is the style requested for edges that carry none.
func (o *Options) baseStyle() bundle.Style {
	return bundle.Style{Stroke: o.Stroke, Width: o.StrokeWidth, Opacity: o.Opacity}
}
