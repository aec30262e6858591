package bundle

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/stat"
	"honnef.co/go/curve"

	"github.com/matzehuels/edgebundle/pkg/errors"
	"github.com/matzehuels/edgebundle/pkg/observability"
)

// =============================================================================
// Results
// =============================================================================

// Result is the geometry of one input edge.
type Result struct {
	// PathCommands is the interpolated curve.
	PathCommands []PathCommand `json:"path_commands"`

	// ControlPoints are the final simulated points, endpoints included.
	ControlPoints []curve.Point `json:"control_points"`

	Style Style `json:"style"`

	// Degenerate is set for zero-length or non-finite edges, which are
	// emitted as a single zero-length segment.
	Degenerate bool `json:"degenerate,omitempty"`
}

// Path returns the result as a curve.BezPath.
func (r Result) Path() curve.BezPath { return bezPath(r.PathCommands) }

// SVG returns the path as an SVG path data string.
func (r Result) SVG() string { return r.Path().SVG(curve.SVGOptions{}) }

// Bounds returns the control box of the path.
func (r Result) Bounds() curve.Rect { return r.Path().ControlBox() }

// Stats describes a finished render.
type Stats struct {
	Edges      int `json:"edges"`
	Bundling   int `json:"bundling"`
	Degenerate int `json:"degenerate"`
	Pairs      int `json:"pairs"`
	Iterations int `json:"iterations"`

	CompatibilityFailures int `json:"compatibility_failures,omitempty"`

	// MeanDisplacement is the mean distance of interior control points
	// from their starting position on the chord.
	MeanDisplacement float64 `json:"mean_displacement"`

	Duration time.Duration `json:"duration"`
}

// =============================================================================
// Options
// =============================================================================

// Option configures a render.
type Option func(*renderer)

type renderer struct {
	logger   *log.Logger
	report   func(error)
	styles   *StyleAccessors
	table    []Style
	progress func(iteration, total int)
}

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(l *log.Logger) Option {
	return func(r *renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithErrorReporter receives the first compatibility function failure of a
// render. Without it the failure is logged as a warning.
func WithErrorReporter(fn func(error)) Option {
	return func(r *renderer) { r.report = fn }
}

// WithStyles sets per-edge style accessors.
func WithStyles(a StyleAccessors) Option {
	return func(r *renderer) { r.styles = &a }
}

// WithStyleTable sets one style per input edge. The table must have exactly
// as many entries as there are edges. Zero fields fall back to the accessor
// or default value.
func WithStyleTable(styles []Style) Option {
	return func(r *renderer) { r.table = styles }
}

// WithProgress is called after every simulation iteration.
func WithProgress(fn func(iteration, total int)) Option {
	return func(r *renderer) { r.progress = fn }
}

// =============================================================================
// Render
// =============================================================================

// Render bundles edges and returns one result per edge, in input order.
// The only error is a style table whose length differs from len(edges).
func Render(edges []Edge, cfg Config, opts ...Option) ([]Result, error) {
	results, _, err := RenderContext(context.Background(), edges, cfg, opts...)
	return results, err
}

// RenderContext is Render with cancellation and run statistics. ctx is
// checked between simulation iterations; a canceled render returns no
// results.
func RenderContext(ctx context.Context, edges []Edge, cfg Config, opts ...Option) (results []Result, stats Stats, err error) {
	r := &renderer{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(r)
	}
	if r.table != nil && len(r.table) != len(edges) {
		return nil, Stats{}, errors.New(errors.ErrCodeLengthMismatch,
			"style table has %d entries for %d edges", len(r.table), len(edges))
	}

	start := time.Now()
	hooks := observability.Bundle()
	hooks.OnBundleStart(ctx, len(edges))
	defer func() {
		stats.Duration = time.Since(start)
		hooks.OnBundleComplete(ctx, observability.BundleStats{
			Edges:      stats.Edges,
			Degenerate: stats.Degenerate,
			Pairs:      stats.Pairs,
			Iterations: stats.Iterations,
		}, stats.Duration, err)
	}()

	cfg, notes := cfg.normalize()
	for _, n := range notes {
		r.logger.Warn("config adjusted", "change", n)
	}

	states := r.plan(edges, cfg)
	stats.Edges = len(edges)
	for _, s := range states {
		switch {
		case s.degenerate:
			stats.Degenerate++
		case s.bundling:
			stats.Bundling++
		}
	}

	table, err := scoreAll(ctx, states, cfg)
	if err != nil {
		return nil, stats, errors.Wrap(errors.ErrCodeCanceled, err, "score compatibility")
	}
	stats.Pairs = table.pairs()
	if table.failures > 0 {
		stats.CompatibilityFailures = table.failures
		r.reportFailure(ctx, table)
	}
	r.logger.Debug("compatibility scored", "edges", len(edges), "pairs", stats.Pairs)

	sim := newSimulator(states, table, cfg)
	err = sim.relax(ctx, func(it int) {
		stats.Iterations = it
		if r.progress != nil {
			r.progress(it, cfg.Iterations)
		}
	})
	if err != nil {
		return nil, stats, errors.Wrap(errors.ErrCodeCanceled, err, "relax")
	}
	smooth(states, cfg.SmoothingType, cfg.SmoothingIterations)

	stats.MeanDisplacement = meanDisplacement(states)
	results = make([]Result, len(states))
	for i, s := range states {
		pts := s.positions()
		results[i] = Result{
			PathCommands:  commands(toPath(pts, cfg.CurveType, cfg.CurveTension)),
			ControlPoints: pts,
			Style:         r.style(edges[i], i),
			Degenerate:    s.degenerate,
		}
	}
	r.logger.Debug("bundling complete", "edges", len(edges), "iterations", stats.Iterations,
		"displacement", stats.MeanDisplacement)
	return results, stats, nil
}

func (r *renderer) plan(edges []Edge, cfg Config) []*edgeState {
	ref := referenceLength(edges, cfg)
	states := make([]*edgeState, len(edges))
	for i, e := range edges {
		states[i] = plan(e, cfg, ref)
		if states[i].degenerate {
			r.logger.Debug("degenerate edge", "index", i, "source", e.Source, "target", e.Target)
		}
	}
	return states
}

func (r *renderer) style(e Edge, i int) Style {
	st := r.styles.resolve(e, i)
	if r.table != nil {
		st = st.Merge(r.table[i])
	}
	return st
}

func (r *renderer) reportFailure(ctx context.Context, table *compatibility) {
	err := errors.Wrap(errors.ErrCodeCompatibility, table.firstErr, "%d pair(s) failed", table.failures)
	observability.Bundle().OnCompatibilityFailure(ctx, table.failures, err)
	if r.report != nil {
		r.report(err)
		return
	}
	r.logger.Warn("compatibility function failed; affected pairs score 0",
		"failures", table.failures, "err", table.firstErr)
}

// meanDisplacement averages how far interior points moved off the chord.
func meanDisplacement(states []*edgeState) float64 {
	var d []float64
	for _, s := range states {
		if !s.bundling {
			continue
		}
		for k := 1; k < len(s.points)-1; k++ {
			d = append(d, s.points[k].Position.Distance(s.chordPoint(s.param(k))))
		}
	}
	if len(d) == 0 {
		return 0
	}
	return stat.Mean(d, nil)
}
