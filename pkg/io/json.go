package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"honnef.co/go/curve"

	"github.com/matzehuels/edgebundle/pkg/bundle"
	"github.com/matzehuels/edgebundle/pkg/errors"
)

// Document is a decoded edge document.
type Document struct {
	Edges []bundle.Edge

	// Styles holds one entry per edge when any edge declares a style,
	// and is nil otherwise.
	Styles []bundle.Style
}

type document struct {
	Nodes []node `json:"nodes,omitempty"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type edge struct {
	From   string         `json:"from,omitempty"`
	To     string         `json:"to,omitempty"`
	Source *point         `json:"source,omitempty"`
	Target *point         `json:"target,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
	Style  *bundle.Style  `json:"style,omitempty"`
}

// ReadJSON decodes an edge document from r.
//
// Errors carry the INVALID_INPUT code and name the offending node or edge:
// duplicate or malformed node ids, edges referencing unknown nodes, and
// edges that give neither ids nor inline endpoints. ReadJSON does not
// close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var data document
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode edge document")
	}

	pos := make(map[string]curve.Point, len(data.Nodes))
	for i, n := range data.Nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		if _, dup := pos[n.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node id %q", n.ID)
		}
		pos[n.ID] = curve.Pt(n.X, n.Y)
	}

	doc := &Document{Edges: make([]bundle.Edge, len(data.Edges))}
	var styled bool
	for i, e := range data.Edges {
		be, err := e.resolve(pos)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		doc.Edges[i] = be
		if e.Style != nil {
			styled = true
		}
	}
	if styled {
		doc.Styles = make([]bundle.Style, len(data.Edges))
		for i, e := range data.Edges {
			if e.Style != nil {
				doc.Styles[i] = *e.Style
			}
		}
	}
	return doc, nil
}

func (e edge) resolve(pos map[string]curve.Point) (bundle.Edge, error) {
	meta := normalizeMeta(e.Meta)
	switch {
	case e.From != "" || e.To != "":
		src, ok := pos[e.From]
		if !ok {
			return bundle.Edge{}, errors.New(errors.ErrCodeInvalidInput, "unknown node %q", e.From)
		}
		dst, ok := pos[e.To]
		if !ok {
			return bundle.Edge{}, errors.New(errors.ErrCodeInvalidInput, "unknown node %q", e.To)
		}
		if meta == nil {
			meta = make(map[string]any, 2)
		}
		if _, set := meta["from"]; !set {
			meta["from"] = e.From
		}
		if _, set := meta["to"]; !set {
			meta["to"] = e.To
		}
		return bundle.Edge{Source: src, Target: dst, Metadata: meta}, nil
	case e.Source != nil && e.Target != nil:
		return bundle.Edge{
			Source:   curve.Pt(e.Source.X, e.Source.Y),
			Target:   curve.Pt(e.Target.X, e.Target.Y),
			Metadata: meta,
		}, nil
	}
	return bundle.Edge{}, errors.New(errors.ErrCodeInvalidInput, "edge needs from/to or source/target")
}

// normalizeMeta turns json.Number values into float64, or int64 when
// the number is integral.
func normalizeMeta(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		return normalizeMeta(t)
	case []any:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	}
	return v
}

// ImportJSON reads the edge document at path.
func ImportJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// WriteJSON encodes doc with inline endpoints. The output can be read back
// with [ReadJSON].
func WriteJSON(w io.Writer, doc *Document) error {
	out := document{Edges: make([]edge, len(doc.Edges))}
	for i, e := range doc.Edges {
		out.Edges[i] = edge{
			Source: &point{X: e.Source.X, Y: e.Source.Y},
			Target: &point{X: e.Target.X, Y: e.Target.Y},
			Meta:   e.Metadata,
		}
		if i < len(doc.Styles) && doc.Styles[i] != (bundle.Style{}) {
			st := doc.Styles[i]
			out.Edges[i].Style = &st
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes doc to a file at path.
func ExportJSON(path string, doc *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
