package dot

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"honnef.co/go/curve"

	"github.com/matzehuels/edgebundle/pkg/errors"
)

const sample = `digraph G {
  a -> b [label="calls", type=sync];
  a -> c [weight=2, color="#ff0000", penwidth=3];
  b -> c;
}`

func TestReadDOT(t *testing.T) {
	doc, err := ReadDOT(context.Background(), []byte(sample), LayoutDot)
	if err != nil {
		t.Fatalf("ReadDOT: %v", err)
	}
	if len(doc.Edges) != 3 {
		t.Fatalf("edges = %d, want 3", len(doc.Edges))
	}

	byPair := make(map[string]int)
	for i, e := range doc.Edges {
		for _, p := range []curve.Point{e.Source, e.Target} {
			if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
				t.Errorf("edge %d has non-finite endpoint %v", i, p)
			}
		}
		if e.IsDegenerate() {
			t.Errorf("edge %d is degenerate", i)
		}
		byPair[e.Meta("from").(string)+e.Meta("to").(string)] = i
	}

	ab, ok := byPair["ab"]
	if !ok {
		t.Fatalf("missing edge a->b in %v", byPair)
	}
	if got := doc.Edges[ab].Meta("label"); got != "calls" {
		t.Errorf("a->b label = %v, want calls", got)
	}
	if got := doc.Edges[ab].Meta("type"); got != "sync" {
		t.Errorf("a->b type = %v, want sync", got)
	}

	ac := byPair["ac"]
	if got := doc.Edges[ac].Meta("weight"); got != 2.0 {
		t.Errorf("a->c weight = %v, want 2", got)
	}
	if len(doc.Styles) != 3 {
		t.Fatalf("styles = %d, want 3", len(doc.Styles))
	}
	if st := doc.Styles[ac]; st.Stroke != "#ff0000" || st.Width != 3 {
		t.Errorf("a->c style = %+v", st)
	}

	// Top-to-bottom rank order survives the flip into screen space.
	if a, b := doc.Edges[ab].Source, doc.Edges[ab].Target; a.Y >= b.Y {
		t.Errorf("a.y = %g should be above b.y = %g", a.Y, b.Y)
	}
}

func TestReadDOTUnstyled(t *testing.T) {
	doc, err := ReadDOT(context.Background(), []byte(`graph { x -- y; y -- z }`), LayoutCirco)
	if err != nil {
		t.Fatalf("ReadDOT: %v", err)
	}
	if len(doc.Edges) != 2 {
		t.Errorf("edges = %d, want 2", len(doc.Edges))
	}
	if doc.Styles != nil {
		t.Errorf("styles = %v, want nil", doc.Styles)
	}
}

func TestReadDOTErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		layout Layout
		code   errors.Code
	}{
		{"unknown layout", sample, "spring", errors.ErrCodeInvalidInput},
		{"malformed", "digraph {", LayoutDot, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDOT(context.Background(), []byte(tt.input), tt.layout)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestImportDOT(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "g.dot")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := ImportDOT(context.Background(), path, "")
	if err != nil {
		t.Fatalf("ImportDOT: %v", err)
	}
	if len(doc.Edges) != 3 {
		t.Errorf("edges = %d, want 3", len(doc.Edges))
	}

	_, err = ImportDOT(context.Background(), filepath.Join(dir, "missing.dot"), "")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file: err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestParsePos(t *testing.T) {
	tests := []struct {
		in      string
		want    curve.Point
		wantErr bool
	}{
		{"27,90", curve.Pt(27, 90), false},
		{"1.5,2.25!", curve.Pt(1.5, 2.25), false},
		{" 3 , 4 ", curve.Pt(3, 4), false},
		{"", curve.Point{}, true},
		{"12", curve.Point{}, true},
		{"a,b", curve.Point{}, true},
		{"NaN,1", curve.Point{}, true},
	}
	for _, tt := range tests {
		got, err := parsePos(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePos(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parsePos(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBoundingTop(t *testing.T) {
	top, err := boundingTop("0,0,116,180")
	if err != nil || top != 180 {
		t.Errorf("boundingTop = %g, %v; want 180", top, err)
	}
	if _, err := boundingTop("0,0,1"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("short box: err = %v", err)
	}
}
