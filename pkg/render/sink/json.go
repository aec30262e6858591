package sink

import (
	"encoding/json"

	"honnef.co/go/curve"

	"github.com/matzehuels/edgebundle/pkg/bundle"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	stats  *bundle.Stats
	edges  []bundle.Edge
	config *bundle.Config
}

// WithJSONStats records the run statistics in the output.
func WithJSONStats(s bundle.Stats) JSONOption { return func(r *jsonRenderer) { r.stats = &s } }

// WithJSONEdges attaches the input edges so that each result carries its
// source, target and metadata. The slice must be parallel to the results.
func WithJSONEdges(edges []bundle.Edge) JSONOption { return func(r *jsonRenderer) { r.edges = edges } }

// WithJSONConfig records the configuration the results were produced with,
// enabling reproducible re-rendering.
func WithJSONConfig(cfg bundle.Config) JSONOption { return func(r *jsonRenderer) { r.config = &cfg } }

type jsonOutput struct {
	Bounds jsonRect       `json:"bounds"`
	Config *bundle.Config `json:"config,omitempty"`
	Stats  *bundle.Stats  `json:"stats,omitempty"`
	Edges  []jsonEdge     `json:"edges"`
}

type jsonRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type jsonPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type jsonCommand struct {
	Op     bundle.PathOp `json:"op"`
	Points []jsonPoint   `json:"points"`
}

type jsonEdge struct {
	Index         int            `json:"index"`
	Source        *jsonPoint     `json:"source,omitempty"`
	Target        *jsonPoint     `json:"target,omitempty"`
	Meta          map[string]any `json:"meta,omitempty"`
	D             string         `json:"d"`
	Commands      []jsonCommand  `json:"commands"`
	ControlPoints []jsonPoint    `json:"control_points"`
	Style         bundle.Style   `json:"style"`
	Degenerate    bool           `json:"degenerate,omitempty"`
}

// RenderJSON encodes results as indented JSON.
func RenderJSON(results []bundle.Result, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Config: r.config,
		Stats:  r.stats,
		Edges:  make([]jsonEdge, len(results)),
	}

	var box curve.Rect
	for i, res := range results {
		if i == 0 {
			box = res.Bounds()
		} else {
			box = box.Union(res.Bounds())
		}
		out.Edges[i] = buildJSONEdge(i, res, r.edges)
	}
	out.Bounds = jsonRect{X: box.X0, Y: box.Y0, Width: box.Width(), Height: box.Height()}

	return json.MarshalIndent(out, "", "  ")
}

func buildJSONEdge(i int, res bundle.Result, edges []bundle.Edge) jsonEdge {
	je := jsonEdge{
		Index:         i,
		D:             res.SVG(),
		Commands:      make([]jsonCommand, len(res.PathCommands)),
		ControlPoints: points(res.ControlPoints),
		Style:         res.Style,
		Degenerate:    res.Degenerate,
	}
	for k, c := range res.PathCommands {
		je.Commands[k] = jsonCommand{Op: c.Op, Points: points(c.Points)}
	}
	if i < len(edges) {
		e := edges[i]
		je.Source = &jsonPoint{X: e.Source.X, Y: e.Source.Y}
		je.Target = &jsonPoint{X: e.Target.X, Y: e.Target.Y}
		je.Meta = e.Metadata
	}
	return je
}

func points(pts []curve.Point) []jsonPoint {
	out := make([]jsonPoint, len(pts))
	for i, p := range pts {
		out[i] = jsonPoint{X: p.X, Y: p.Y}
	}
	return out
}
