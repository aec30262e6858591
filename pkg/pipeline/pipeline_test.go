package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/edgebundle/pkg/bundle"
	"github.com/matzehuels/edgebundle/pkg/cache"
	"github.com/matzehuels/edgebundle/pkg/errors"
)

const sampleDoc = `{
  "nodes": [
    {"id": "a", "x": 0, "y": 0},
    {"id": "b", "x": 100, "y": 0},
    {"id": "c", "x": 0, "y": 10},
    {"id": "d", "x": 100, "y": 10}
  ],
  "edges": [
    {"from": "a", "to": "b"},
    {"from": "c", "to": "d", "style": {"stroke": "red"}}
  ]
}`

const sampleDOT = `digraph { a -> b; a -> c; b -> c }`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Invalid format should fail with INVALID_FORMAT, got %v", err)
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateInputFormatAndLayout(t *testing.T) {
	for _, f := range []string{"json", "dot"} {
		if err := ValidateInputFormat(f); err != nil {
			t.Errorf("ValidateInputFormat(%q) = %v", f, err)
		}
	}
	if err := ValidateInputFormat("yaml"); err == nil {
		t.Error("ValidateInputFormat(yaml) should fail")
	}
	for _, l := range []string{"dot", "neato", "fdp", "sfdp", "circo", "twopi"} {
		if err := ValidateLayout(l); err != nil {
			t.Errorf("ValidateLayout(%q) = %v", l, err)
		}
	}
	if err := ValidateLayout("spring"); err == nil {
		t.Error("ValidateLayout(spring) should fail")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]string{
		"graph.dot":      InputDOT,
		"graph.GV":       InputDOT,
		"edges.json":     InputJSON,
		"-":              InputJSON,
		"dir.dot/x.json": InputJSON,
	}
	for source, want := range tests {
		if got := DetectFormat(source); got != want {
			t.Errorf("DetectFormat(%q) = %q, want %q", source, got, want)
		}
	}
}

func TestSetRenderDefaults(t *testing.T) {
	var o Options
	o.SetRenderDefaults()
	if diff := cmp.Diff([]string{FormatSVG}, o.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
	if o.Margin == nil || *o.Margin != DefaultMargin {
		t.Errorf("Margin = %v, want %v", o.Margin, DefaultMargin)
	}
	if o.Logger == nil {
		t.Error("Logger not defaulted")
	}

	zero := 0.0
	o = Options{Margin: &zero}
	o.SetRenderDefaults()
	if *o.Margin != 0 {
		t.Errorf("explicit zero margin overwritten: %v", *o.Margin)
	}
}

func TestValidateForRender(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		code   errors.Code
	}{
		{"bad format", func(o *Options) { o.Formats = []string{"gif"} }, errors.ErrCodeInvalidFormat},
		{"bad curve", func(o *Options) { o.Config.CurveType = "spline" }, errors.ErrCodeInvalidCurveType},
		{"negative width", func(o *Options) { o.Width = -1 }, errors.ErrCodeInvalidConfig},
		{"opacity", func(o *Options) { o.Opacity = 2 }, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.modify(&o)
			if err := o.ValidateForRender(); !errors.Is(err, tt.code) {
				t.Errorf("ValidateForRender() = %v, want code %s", err, tt.code)
			}
		})
	}

	o := DefaultOptions()
	if err := o.ValidateForRender(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	return NewRunner(c, nil, nil)
}

func TestRunnerExecuteCaches(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)
	defer r.Close()

	opts := DefaultOptions()
	opts.Formats = []string{FormatSVG, FormatJSON}

	first, err := r.ExecuteInput(ctx, []byte(sampleDoc), "edges.json", opts)
	if err != nil {
		t.Fatalf("ExecuteInput: %v", err)
	}
	if first.CacheHit {
		t.Error("first run should miss the cache")
	}
	if len(first.Results) != 2 {
		t.Fatalf("Results = %d, want 2", len(first.Results))
	}
	if first.Stats.Edges != 2 || first.Stats.Bundle.Edges != 2 {
		t.Errorf("Stats = %+v", first.Stats)
	}
	svg := string(first.Artifacts[FormatSVG])
	if !strings.Contains(svg, `stroke="red"`) || !strings.Contains(svg, `stroke="`+bundle.DefaultStroke+`"`) {
		t.Errorf("SVG styles wrong:\n%s", svg)
	}
	if !bytes.Contains(first.Artifacts[FormatJSON], []byte(`"control_points"`)) {
		t.Error("JSON artifact missing control points")
	}

	second, err := r.ExecuteInput(ctx, []byte(sampleDoc), "edges.json", opts)
	if err != nil {
		t.Fatalf("ExecuteInput (cached): %v", err)
	}
	if !second.CacheHit {
		t.Fatal("second run should hit the cache")
	}
	if second.Results != nil {
		t.Error("cached run should not carry results")
	}
	if diff := cmp.Diff(first.Artifacts, second.Artifacts); diff != "" {
		t.Errorf("cached artifacts differ (-first +second):\n%s", diff)
	}
	if second.Stats.Bundle.Pairs != first.Stats.Bundle.Pairs {
		t.Errorf("cached stats = %+v, want %+v", second.Stats.Bundle, first.Stats.Bundle)
	}

	opts.Refresh = true
	third, err := r.ExecuteInput(ctx, []byte(sampleDoc), "edges.json", opts)
	if err != nil {
		t.Fatalf("ExecuteInput (refresh): %v", err)
	}
	if third.CacheHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestRunnerExecuteDifferentOptionsMiss(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)

	opts := DefaultOptions()
	if _, err := r.ExecuteInput(ctx, []byte(sampleDoc), "edges.json", opts); err != nil {
		t.Fatal(err)
	}
	opts.Config.Iterations = 5
	res, err := r.ExecuteInput(ctx, []byte(sampleDoc), "edges.json", opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit {
		t.Error("changed config should miss the cache")
	}

	opts.Formats = []string{FormatJSON}
	res, err = r.ExecuteInput(ctx, []byte(sampleDoc), "edges.json", opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheHit {
		t.Error("changed formats should miss the cache")
	}
}

func TestRunnerCustomCompatibilityNotCached(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)

	opts := DefaultOptions()
	opts.Config.CompatibilityFunc = func(a, b bundle.Edge) (float64, error) { return 1, nil }
	for i := range 2 {
		res, err := r.ExecuteInput(ctx, []byte(sampleDoc), "edges.json", opts)
		if err != nil {
			t.Fatal(err)
		}
		if res.CacheHit {
			t.Errorf("run %d hit the cache with a custom compatibility function", i)
		}
	}
}

func TestRunnerStrokeOverride(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	opts := DefaultOptions()
	opts.Stroke = "black"
	opts.StrokeWidth = 3

	res, err := r.ExecuteInput(context.Background(), []byte(sampleDoc), "edges.json", opts)
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Results[0].Style; got.Stroke != "black" || got.Width != 3 || got.Opacity != bundle.DefaultOpacity {
		t.Errorf("edge 0 style = %+v", got)
	}
	if got := res.Results[1].Style; got.Stroke != "red" || got.Width != 3 {
		t.Errorf("edge 1 style = %+v, per-edge stroke should win", got)
	}
}

func TestRunnerDOTInput(t *testing.T) {
	ctx := context.Background()
	r := newTestRunner(t)

	opts := DefaultOptions()
	res, err := r.ExecuteInput(ctx, []byte(sampleDOT), "graph.dot", opts)
	if err != nil {
		t.Fatalf("ExecuteInput: %v", err)
	}
	if res.Stats.Edges != 3 {
		t.Errorf("Edges = %d, want 3", res.Stats.Edges)
	}

	key := r.Keyer.DocumentKey("dot:dot", cache.Hash([]byte(sampleDOT)))
	if _, hit, err := r.Cache.Get(ctx, key); err != nil || !hit {
		t.Errorf("laid-out document not cached (hit=%v, err=%v)", hit, err)
	}

	doc, err := r.Parse(ctx, []byte(sampleDOT), "graph.dot", opts)
	if err != nil {
		t.Fatalf("Parse (cached): %v", err)
	}
	if diff := cmp.Diff(res.Document.Edges, doc.Edges); diff != "" {
		t.Errorf("cached document differs (-fresh +cached):\n%s", diff)
	}
}

func TestRunnerInvalidInput(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	if _, err := r.ExecuteInput(ctx, []byte(`{"edges":[{"from":"x","to":"y"}]}`), "e.json", DefaultOptions()); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown node: err = %v", err)
	}

	opts := DefaultOptions()
	opts.InputFormat = "yaml"
	if _, err := r.ExecuteInput(ctx, []byte(sampleDoc), "e.json", opts); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad input format: err = %v", err)
	}
}
