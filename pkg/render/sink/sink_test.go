package sink

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"honnef.co/go/curve"

	"github.com/matzehuels/edgebundle/pkg/bundle"
	"github.com/matzehuels/edgebundle/pkg/errors"
	"github.com/matzehuels/edgebundle/pkg/render"
)

func line(a, b curve.Point, st bundle.Style) bundle.Result {
	return bundle.Result{
		PathCommands: []bundle.PathCommand{
			{Op: bundle.OpMoveTo, Points: []curve.Point{a}},
			{Op: bundle.OpLineTo, Points: []curve.Point{b}},
		},
		ControlPoints: []curve.Point{a, b},
		Style:         st,
	}
}

func sampleResults() []bundle.Result {
	return []bundle.Result{
		line(curve.Pt(0, 0), curve.Pt(10, 0), bundle.DefaultStyle()),
		line(curve.Pt(0, 10), curve.Pt(10, 10), bundle.Style{Stroke: "red", Width: 2, Opacity: 1}),
	}
}

func TestRenderSVG(t *testing.T) {
	svg := string(RenderSVG(sampleResults()))

	for _, want := range []string{
		`viewBox="-10 -10 30 30" width="30" height="30"`,
		`<path id="edge-0" d="M0,0 L10,0" stroke="#4682b4" stroke-width="1" stroke-opacity="0.6"/>`,
		`<path id="edge-1" d="M0,10 L10,10" stroke="red" stroke-width="2" stroke-opacity="1"/>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q\n%s", want, svg)
		}
	}
	if strings.Contains(svg, "<rect") {
		t.Error("unexpected background rect")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("SVG not terminated")
	}
}

func TestRenderSVGOptions(t *testing.T) {
	svg := string(RenderSVG(sampleResults(),
		WithMargin(0),
		WithSize(200, 100),
		WithBackground(`#fff"`),
		WithStrokeOverride(bundle.Style{Stroke: "black"}),
	))

	for _, want := range []string{
		`viewBox="0 0 10 10" width="200" height="100"`,
		`<rect x="0" y="0" width="10" height="10" fill="#fff&#34;"/>`,
		`id="edge-0" d="M0,0 L10,0" stroke="black" stroke-width="1"`,
		`id="edge-1" d="M0,10 L10,10" stroke="black" stroke-width="2"`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %q\n%s", want, svg)
		}
	}
}

func TestRenderSVGEmpty(t *testing.T) {
	svg := string(RenderSVG(nil, WithMargin(5)))
	if !strings.Contains(svg, `viewBox="-5 -5 10 10"`) {
		t.Errorf("empty SVG viewBox wrong:\n%s", svg)
	}
	if strings.Contains(svg, "<path") {
		t.Error("empty SVG contains paths")
	}
}

func TestRenderJSON(t *testing.T) {
	results := sampleResults()
	edges := []bundle.Edge{
		{Source: curve.Pt(0, 0), Target: curve.Pt(10, 0), Metadata: map[string]any{"type": "a"}},
		{Source: curve.Pt(0, 10), Target: curve.Pt(10, 10)},
	}
	data, err := RenderJSON(results,
		WithJSONStats(bundle.Stats{Edges: 2, Iterations: 7}),
		WithJSONEdges(edges),
		WithJSONConfig(bundle.DefaultConfig()),
	)
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}

	var out jsonOutput
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("json.Unmarshal() error: %v", err)
	}
	if out.Bounds != (jsonRect{X: 0, Y: 0, Width: 10, Height: 10}) {
		t.Errorf("Bounds = %+v", out.Bounds)
	}
	if out.Stats == nil || out.Stats.Iterations != 7 {
		t.Errorf("Stats = %+v", out.Stats)
	}
	if out.Config == nil || out.Config.CurveType != bundle.DefaultCurveType {
		t.Errorf("Config = %+v", out.Config)
	}
	if len(out.Edges) != 2 {
		t.Fatalf("Edges count = %d, want 2", len(out.Edges))
	}

	e := out.Edges[0]
	if e.D != "M0,0 L10,0" {
		t.Errorf("D = %q", e.D)
	}
	if len(e.Commands) != 2 || e.Commands[0].Op != bundle.OpMoveTo || e.Commands[1].Points[0] != (jsonPoint{10, 0}) {
		t.Errorf("Commands = %+v", e.Commands)
	}
	if e.Meta["type"] != "a" {
		t.Errorf("Meta = %v", e.Meta)
	}
	if e.Target == nil || *e.Target != (jsonPoint{10, 0}) {
		t.Errorf("Target = %v", e.Target)
	}
	if out.Edges[1].Style.Stroke != "red" {
		t.Errorf("Style = %+v", out.Edges[1].Style)
	}
}

func TestRenderJSONMinimal(t *testing.T) {
	data, err := RenderJSON(sampleResults())
	if err != nil {
		t.Fatalf("RenderJSON() error: %v", err)
	}
	s := string(data)
	for _, absent := range []string{`"stats"`, `"config"`, `"meta"`, `"source"`} {
		if strings.Contains(s, absent) {
			t.Errorf("unexpected %s in minimal output", absent)
		}
	}
}

func TestRenderPDFWithoutConverter(t *testing.T) {
	if render.Available() {
		t.Skip("rsvg-convert installed")
	}
	_, err := RenderPDF(context.Background(), sampleResults())
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("RenderPDF err = %v, want UNSUPPORTED", err)
	}
	_, err = RenderPNG(context.Background(), sampleResults(), WithScale(1))
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("RenderPNG err = %v, want UNSUPPORTED", err)
	}
}
