// Package dot reads Graphviz DOT graphs as edge documents.
//
// Node positions come from a Graphviz layout engine run through
// go-graphviz. Nodes that already carry a pinned pos attribute keep it
// when the engine honours pins (neato, fdp). Every DOT edge becomes one
// [bundle.Edge]; the label, type and weight attributes are copied into the
// edge metadata, and color and penwidth become a per-edge style.
//
// Graphviz places the origin at the bottom left. Coordinates are flipped
// into screen space (y down) using the laid-out bounding box so that the
// bundled output matches what Graphviz itself would draw.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"honnef.co/go/curve"

	"github.com/matzehuels/edgebundle/pkg/bundle"
	"github.com/matzehuels/edgebundle/pkg/errors"
	edgeio "github.com/matzehuels/edgebundle/pkg/io"
)

// Layout names a Graphviz layout engine.
type Layout string

// Supported layout engines.
const (
	LayoutDot   Layout = "dot"
	LayoutNeato Layout = "neato"
	LayoutFDP   Layout = "fdp"
	LayoutSFDP  Layout = "sfdp"
	LayoutCirco Layout = "circo"
	LayoutTwopi Layout = "twopi"
)

// DefaultLayout is used when no layout is requested.
const DefaultLayout = LayoutDot

// ValidLayouts is the set of supported layout engines.
var ValidLayouts = map[Layout]bool{
	LayoutDot:   true,
	LayoutNeato: true,
	LayoutFDP:   true,
	LayoutSFDP:  true,
	LayoutCirco: true,
	LayoutTwopi: true,
}

// metaAttrs are the edge attributes copied into bundle metadata.
var metaAttrs = []string{"label", "type", "weight"}

// ReadDOT lays out the DOT source in data and returns its edges.
func ReadDOT(ctx context.Context, data []byte, layout Layout) (*edgeio.Document, error) {
	if layout == "" {
		layout = DefaultLayout
	}
	if !ValidLayouts[layout] {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"invalid layout: %q (must be one of: dot, neato, fdp, sfdp, circo, twopi)", layout)
	}

	positioned, err := runLayout(ctx, data, layout)
	if err != nil {
		return nil, err
	}
	return extract(positioned)
}

// ImportDOT reads the DOT file at path and lays it out.
func ImportDOT(ctx context.Context, path string, layout Layout) (*edgeio.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := ReadDOT(ctx, data, layout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// runLayout renders data back to DOT with positions filled in.
func runLayout(ctx context.Context, data []byte, layout Layout) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	gv.SetLayout(graphviz.Layout(layout))
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("layout %s: %w", layout, err)
	}
	return buf.Bytes(), nil
}

// extract walks a laid-out graph and builds the edge document.
func extract(data []byte) (*edgeio.Document, error) {
	g, err := graphviz.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse laid-out DOT: %w", err)
	}
	defer g.Close()

	top := 0.0
	if bb := g.GetStr("bb"); bb != "" {
		if top, err = boundingTop(bb); err != nil {
			return nil, err
		}
	}

	pos := make(map[string]curve.Point)
	var order []*graphviz.Node
	for n, err := g.FirstNode(); n != nil || err != nil; n, err = g.NextNode(n) {
		if err != nil {
			return nil, fmt.Errorf("walk nodes: %w", err)
		}
		name, err := n.Name()
		if err != nil {
			return nil, fmt.Errorf("node name: %w", err)
		}
		p, err := parsePos(n.GetStr("pos"))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", name)
		}
		pos[name] = curve.Pt(p.X, top-p.Y)
		order = append(order, n)
	}

	doc := &edgeio.Document{}
	var styles []bundle.Style
	var styled bool
	for _, n := range order {
		for e, err := g.FirstOut(n); e != nil || err != nil; e, err = g.NextOut(e) {
			if err != nil {
				return nil, fmt.Errorf("walk edges: %w", err)
			}
			be, st, err := convertEdge(e, pos)
			if err != nil {
				return nil, err
			}
			doc.Edges = append(doc.Edges, be)
			styles = append(styles, st)
			if st != (bundle.Style{}) {
				styled = true
			}
		}
	}
	if styled {
		doc.Styles = styles
	}
	return doc, nil
}

func convertEdge(e *graphviz.Edge, pos map[string]curve.Point) (bundle.Edge, bundle.Style, error) {
	tail, err := e.Tail()
	if err != nil {
		return bundle.Edge{}, bundle.Style{}, fmt.Errorf("edge tail: %w", err)
	}
	head, err := e.Head()
	if err != nil {
		return bundle.Edge{}, bundle.Style{}, fmt.Errorf("edge head: %w", err)
	}
	from, err := tail.Name()
	if err != nil {
		return bundle.Edge{}, bundle.Style{}, fmt.Errorf("edge tail: %w", err)
	}
	to, err := head.Name()
	if err != nil {
		return bundle.Edge{}, bundle.Style{}, fmt.Errorf("edge head: %w", err)
	}

	meta := map[string]any{"from": from, "to": to}
	for _, attr := range metaAttrs {
		if v := e.GetStr(attr); v != "" {
			meta[attr] = attrValue(v)
		}
	}

	st := bundle.Style{Stroke: e.GetStr("color")}
	if w := e.GetStr("penwidth"); w != "" {
		if f, err := strconv.ParseFloat(w, 64); err == nil && f > 0 {
			st.Width = f
		}
	}

	return bundle.Edge{Source: pos[from], Target: pos[to], Metadata: meta}, st, nil
}

// attrValue returns numeric attribute values as float64.
func attrValue(v string) any {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// parsePos parses a node pos attribute ("x,y" with an optional "!" pin).
func parsePos(s string) (curve.Point, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "!")
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return curve.Point{}, fmt.Errorf("malformed pos %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return curve.Point{}, fmt.Errorf("malformed pos %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return curve.Point{}, fmt.Errorf("malformed pos %q: %w", s, err)
	}
	if err := errors.ValidateCoordinate("pos", x, y); err != nil {
		return curve.Point{}, err
	}
	return curve.Pt(x, y), nil
}

// boundingTop returns the upper y bound of a "llx,lly,urx,ury" box.
func boundingTop(bb string) (float64, error) {
	parts := strings.Split(bb, ",")
	if len(parts) != 4 {
		return 0, errors.New(errors.ErrCodeInvalidFormat, "malformed bounding box %q", bb)
	}
	top, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidFormat, err, "malformed bounding box %q", bb)
	}
	return top, nil
}
