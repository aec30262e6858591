package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/edgebundle/pkg/bundle"
	"github.com/matzehuels/edgebundle/pkg/config"
	"github.com/matzehuels/edgebundle/pkg/errors"
	"github.com/matzehuels/edgebundle/pkg/pipeline"
	"github.com/matzehuels/edgebundle/pkg/source/remote"
)

// stdio is the input and output name for standard streams.
const stdio = "-"

// bundleOpts holds the command-line flags for the bundle command.
type bundleOpts struct {
	configPath  string
	output      string
	formats     string
	inputFormat string
	layout      string
	refresh     bool
	watch       bool
	jobs        int
	cache       cacheFlags

	// render overrides
	width       float64
	height      float64
	margin      float64
	background  string
	stroke      string
	strokeWidth float64
	opacity     float64

	// bundling overrides
	cfg       bundle.Config
	curve     string
	smoothing string
}

// bundleCommand creates the bundle command.
func (c *CLI) bundleCommand() *cobra.Command {
	opts := bundleOpts{cfg: bundle.DefaultConfig(), jobs: runtime.NumCPU()}

	cmd := &cobra.Command{
		Use:   "bundle [file...]",
		Short: "Bundle the edges of one or more graph drawings",
		Long: `Bundle reads edge documents (JSON) or Graphviz graphs (DOT) and writes
the bundled edges as SVG, JSON, PDF or PNG.

Outputs are written next to each input (graph.json -> graph.svg) unless -o
is given. With several inputs, -o names a directory. Use "-" to read from
stdin or write a single format to stdout.

Settings are taken from --config first; flags given on the command line
override the file.`,
		Example: `  edgebundle bundle graph.json
  edgebundle bundle deps.dot --layout neato -f svg,json
  edgebundle bundle a.json b.json -o out/ --iterations 90
  cat graph.json | edgebundle bundle - -o - > graph.svg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeOpts, settings, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), settings, opts.cache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if opts.watch {
				return c.watch(cmd.Context(), runner, args, &opts, pipeOpts)
			}
			return c.bundleAll(cmd.Context(), runner, args, &opts, pipeOpts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "configuration file (.toml, .yaml)")
	f.StringVarP(&opts.output, "output", "o", "", "output file, base path, or directory for several inputs")
	f.StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json, pdf, png (comma-separated)")
	f.StringVar(&opts.inputFormat, "input-format", "", "input format: json or dot (default: from file extension)")
	f.StringVar(&opts.layout, "layout", "", "Graphviz layout engine for DOT input: dot (default), neato, fdp, sfdp, circo, twopi")
	f.BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")
	f.BoolVarP(&opts.watch, "watch", "w", false, "re-bundle whenever an input file changes")
	f.IntVarP(&opts.jobs, "jobs", "j", opts.jobs, "inputs to bundle in parallel")
	opts.cache.register(cmd)

	f.Float64Var(&opts.width, "width", 0, "SVG width (default: drawing width)")
	f.Float64Var(&opts.height, "height", 0, "SVG height (default: drawing height)")
	f.Float64Var(&opts.margin, "margin", pipeline.DefaultMargin, "padding around the drawing")
	f.StringVar(&opts.background, "background", "", "background color")
	f.StringVar(&opts.stroke, "stroke", "", "stroke color for edges without their own")
	f.Float64Var(&opts.strokeWidth, "stroke-width", 0, "stroke width for edges without their own")
	f.Float64Var(&opts.opacity, "opacity", 0, "stroke opacity for edges without their own")

	f.IntVar(&opts.cfg.Subdivisions, "subdivisions", opts.cfg.Subdivisions, "interior control points per edge")
	f.BoolVar(&opts.cfg.AdaptiveSubdivision, "adaptive", opts.cfg.AdaptiveSubdivision, "scale control points with edge length")
	f.Float64Var(&opts.cfg.ReferenceLength, "reference-length", opts.cfg.ReferenceLength, "edge length that gets exactly --subdivisions points (0 = mean)")
	f.Float64Var(&opts.cfg.CompatibilityThreshold, "threshold", opts.cfg.CompatibilityThreshold, "minimum compatibility for two edges to attract")
	f.IntVar(&opts.cfg.Iterations, "iterations", opts.cfg.Iterations, "simulation iterations")
	f.Float64Var(&opts.cfg.StepSize, "step-size", opts.cfg.StepSize, "maximum control point movement per iteration")
	f.Float64Var(&opts.cfg.Stiffness, "stiffness", opts.cfg.Stiffness, "spring stiffness along each edge")
	f.Float64Var(&opts.cfg.Momentum, "momentum", opts.cfg.Momentum, "velocity carried between iterations")
	f.StringVar(&opts.curve, "curve", string(opts.cfg.CurveType), "curve type: linear, basis, cardinal, catmull-rom")
	f.Float64Var(&opts.cfg.CurveTension, "tension", opts.cfg.CurveTension, "cardinal curve tension")
	f.StringVar(&opts.smoothing, "smoothing", string(opts.cfg.SmoothingType), "smoothing: laplacian, gaussian, bilateral")
	f.IntVar(&opts.cfg.SmoothingIterations, "smoothing-iterations", opts.cfg.SmoothingIterations, "smoothing passes per application")
	f.IntVar(&opts.cfg.SmoothingFrequency, "smoothing-frequency", opts.cfg.SmoothingFrequency, "smooth every N iterations (0 = only at the end)")
	registerValueCompletions(cmd)

	return cmd
}

// bundleFlagFields maps bundling flags onto config fields. Only flags the
// user actually set override the config file.
var bundleFlagFields = map[string]func(dst *bundle.Config, src bundle.Config){
	"subdivisions":         func(d *bundle.Config, s bundle.Config) { d.Subdivisions = s.Subdivisions },
	"adaptive":             func(d *bundle.Config, s bundle.Config) { d.AdaptiveSubdivision = s.AdaptiveSubdivision },
	"reference-length":     func(d *bundle.Config, s bundle.Config) { d.ReferenceLength = s.ReferenceLength },
	"threshold":            func(d *bundle.Config, s bundle.Config) { d.CompatibilityThreshold = s.CompatibilityThreshold },
	"iterations":           func(d *bundle.Config, s bundle.Config) { d.Iterations = s.Iterations },
	"step-size":            func(d *bundle.Config, s bundle.Config) { d.StepSize = s.StepSize },
	"stiffness":            func(d *bundle.Config, s bundle.Config) { d.Stiffness = s.Stiffness },
	"momentum":             func(d *bundle.Config, s bundle.Config) { d.Momentum = s.Momentum },
	"curve":                func(d *bundle.Config, s bundle.Config) { d.CurveType = s.CurveType },
	"tension":              func(d *bundle.Config, s bundle.Config) { d.CurveTension = s.CurveTension },
	"smoothing":            func(d *bundle.Config, s bundle.Config) { d.SmoothingType = s.SmoothingType },
	"smoothing-iterations": func(d *bundle.Config, s bundle.Config) { d.SmoothingIterations = s.SmoothingIterations },
	"smoothing-frequency":  func(d *bundle.Config, s bundle.Config) { d.SmoothingFrequency = s.SmoothingFrequency },
}

// resolve merges the config file with the flags the user set and returns
// validated pipeline options plus the cache settings.
func (o *bundleOpts) resolve(cmd *cobra.Command) (pipeline.Options, config.Cache, error) {
	file, err := loadConfig(o.configPath)
	if err != nil {
		return pipeline.Options{}, config.Cache{}, err
	}
	changed := cmd.Flags().Changed

	if changed("curve") {
		ct, err := bundle.ParseCurveType(o.curve)
		if err != nil {
			return pipeline.Options{}, config.Cache{}, err
		}
		o.cfg.CurveType = ct
	}
	if changed("smoothing") {
		st, err := bundle.ParseSmoothingType(o.smoothing)
		if err != nil {
			return pipeline.Options{}, config.Cache{}, err
		}
		o.cfg.SmoothingType = st
	}

	cfg := file.Bundle
	for name, apply := range bundleFlagFields {
		if changed(name) {
			apply(&cfg, o.cfg)
		}
	}

	r := file.Render
	opts := pipeline.Options{
		InputFormat: o.inputFormat,
		Layout:      o.layout,
		Config:      cfg,
		Formats:     r.Formats,
		Width:       pick(changed("width"), o.width, r.Width),
		Height:      pick(changed("height"), o.height, r.Height),
		Background:  pick(changed("background"), o.background, r.Background),
		Stroke:      pick(changed("stroke"), o.stroke, r.Stroke),
		StrokeWidth: pick(changed("stroke-width"), o.strokeWidth, r.StrokeWidth),
		Opacity:     pick(changed("opacity"), o.opacity, r.Opacity),
		Refresh:     o.refresh,
	}
	if changed("format") || len(opts.Formats) == 0 {
		opts.Formats = parseFormats(o.formats)
	}
	switch {
	case changed("margin"):
		opts.Margin = &o.margin
	case r.Margin > 0:
		m := r.Margin
		opts.Margin = &m
	}

	if err := opts.Config.Validate(); err != nil {
		return pipeline.Options{}, config.Cache{}, err
	}
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return pipeline.Options{}, config.Cache{}, err
	}
	if opts.InputFormat != "" {
		if err := pipeline.ValidateInputFormat(opts.InputFormat); err != nil {
			return pipeline.Options{}, config.Cache{}, err
		}
	}
	if opts.Layout != "" {
		if err := pipeline.ValidateLayout(opts.Layout); err != nil {
			return pipeline.Options{}, config.Cache{}, err
		}
	}
	if o.output == stdio && len(opts.Formats) > 1 {
		return pipeline.Options{}, config.Cache{}, fmt.Errorf("cannot write %d formats to stdout", len(opts.Formats))
	}
	return opts, file.Cache, nil
}

// pick returns flag when the flag was set, else the config file value.
func pick[T any](set bool, flag, file T) T {
	if set {
		return flag
	}
	return file
}

// =============================================================================
// Execution
// =============================================================================

// bundleAll bundles every input, several at a time.
func (c *CLI) bundleAll(ctx context.Context, runner *pipeline.Runner, inputs []string, o *bundleOpts, opts pipeline.Options) error {
	if len(inputs) > 1 && o.output == stdio {
		return fmt.Errorf("cannot write %d inputs to stdout", len(inputs))
	}
	if len(inputs) == 1 {
		return c.bundleOne(ctx, runner, inputs[0], o, opts, false)
	}

	if o.output != "" {
		if err := os.MkdirAll(o.output, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.jobs, 1))
	for _, input := range inputs {
		g.Go(func() error {
			if err := c.bundleOne(gctx, runner, input, o, opts, true); err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// bundleOne runs the pipeline for a single input and writes its artifacts.
// The spinner is only shown when a single input is bundled.
func (c *CLI) bundleOne(ctx context.Context, runner *pipeline.Runner, input string, o *bundleOpts, opts pipeline.Options, multi bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	data, err := readInput(ctx, input)
	if err != nil {
		return err
	}

	opts.Logger = logger
	var spinner *Spinner
	if !multi && o.output != stdio {
		spinner = newSpinner(ctx, fmt.Sprintf("Bundling %s...", displayName(input)))
		spinner.Start()
		defer spinner.Stop()
	}
	opts.Progress = func(iteration, total int) {
		if spinner != nil {
			spinner.Advance(iteration, total)
		}
		logger.Debugf("Iteration %d/%d", iteration, total)
	}

	result, err := runner.ExecuteInput(ctx, data, inputName(input), opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(result.Artifacts, input, o.output, multi && o.output != "")
	if err != nil {
		return err
	}
	if o.output == stdio {
		return nil
	}

	prog.done("bundled", "input", displayName(input), "edges", result.Stats.Edges, "cached", result.CacheHit)
	printSuccess("Bundled %s", displayName(input))
	printStats(result.Stats, result.CacheHit)
	for _, p := range paths {
		printFile(p)
	}
	return nil
}

// readInput reads a file, an http(s) URL, or stdin for "-".
func readInput(ctx context.Context, input string) ([]byte, error) {
	switch {
	case input == stdio:
		return io.ReadAll(os.Stdin)
	case remote.IsURL(input):
		return remote.NewClient().Fetch(ctx, input)
	}
	data, err := os.ReadFile(input)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", input)
	}
	return data, err
}

// displayName is the input name shown to the user.
func displayName(input string) string {
	if input == stdio {
		return "stdin"
	}
	return filepath.Base(inputName(input))
}

// =============================================================================
// Output
// =============================================================================

// writeArtifacts writes one file per format and returns the paths written,
// in format order. With toDir set, output is a directory and files are named
// after the input.
func writeArtifacts(artifacts map[string][]byte, input, output string, toDir bool) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	if output == stdio {
		for _, f := range formats {
			if _, err := os.Stdout.Write(artifacts[f]); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	var base string
	switch {
	case toDir:
		base = filepath.Join(output, basePath("", filepath.Base(inputName(input))))
	case len(formats) == 1 && output != "" && !isFormatExt(output):
		// a single format honours the exact file name given
		base = ""
	default:
		base = basePath(output, inputName(input))
	}

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f
		switch {
		case base == "":
			path = output
		case filepath.Clean(path) == filepath.Clean(input):
			// never overwrite the input document
			path = base + ".bundle." + f
		}
		if err := writeFile(path, artifacts[f]); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// inputName is the name outputs and the input format are derived from.
// Outputs for stdin and URLs land in the working directory.
func inputName(input string) string {
	switch {
	case input == stdio:
		return "edgebundle"
	case remote.IsURL(input):
		// The name becomes an output path, so anything odd falls back.
		name := remote.Name(input)
		if errors.ValidatePath(name) != nil || strings.Contains(name, "/") {
			return "edgebundle"
		}
		return name
	}
	return input
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	if isFormatExt(output) {
		return strings.TrimSuffix(output, filepath.Ext(output))
	}
	return output
}

func isFormatExt(path string) bool {
	return pipeline.ValidFormats[strings.TrimPrefix(filepath.Ext(path), ".")]
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
