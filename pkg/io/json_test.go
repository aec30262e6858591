package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"honnef.co/go/curve"

	"github.com/matzehuels/edgebundle/pkg/bundle"
	"github.com/matzehuels/edgebundle/pkg/errors"
)

const sample = `{
  "nodes": [
    {"id": "a", "x": 0, "y": 0},
    {"id": "b", "x": 100, "y": 0},
    {"id": "c", "x": 50, "y": 80}
  ],
  "edges": [
    {"from": "a", "to": "b", "meta": {"type": "similar", "weight": 2}},
    {"from": "a", "to": "c", "style": {"stroke": "red", "width": 3}},
    {"source": {"x": 1, "y": 2}, "target": {"x": 3, "y": 4.5}}
  ]
}`

func TestReadJSON(t *testing.T) {
	doc, err := ReadJSON(strings.NewReader(sample))
	if err != nil {
		t.Fatal(err)
	}
	want := []bundle.Edge{
		{Source: curve.Pt(0, 0), Target: curve.Pt(100, 0),
			Metadata: map[string]any{"type": "similar", "weight": int64(2), "from": "a", "to": "b"}},
		{Source: curve.Pt(0, 0), Target: curve.Pt(50, 80),
			Metadata: map[string]any{"from": "a", "to": "c"}},
		{Source: curve.Pt(1, 2), Target: curve.Pt(3, 4.5)},
	}
	if diff := cmp.Diff(want, doc.Edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	wantStyles := []bundle.Style{{}, {Stroke: "red", Width: 3}, {}}
	if diff := cmp.Diff(wantStyles, doc.Styles); diff != "" {
		t.Errorf("styles mismatch (-want +got):\n%s", diff)
	}
}

func TestReadJSONNoStyles(t *testing.T) {
	doc, err := ReadJSON(strings.NewReader(`{"edges": [{"source": {"x": 0, "y": 0}, "target": {"x": 1, "y": 1}}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Styles != nil {
		t.Errorf("Styles = %v, want nil", doc.Styles)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"malformed", `{"edges": [`, errors.ErrCodeInvalidFormat},
		{"duplicate node", `{"nodes": [{"id": "a"}, {"id": "a"}], "edges": []}`, errors.ErrCodeInvalidInput},
		{"empty node id", `{"nodes": [{"id": ""}], "edges": []}`, errors.ErrCodeInvalidInput},
		{"unknown from", `{"nodes": [{"id": "a"}], "edges": [{"from": "x", "to": "a"}]}`, errors.ErrCodeInvalidInput},
		{"unknown to", `{"nodes": [{"id": "a"}], "edges": [{"from": "a", "to": "x"}]}`, errors.ErrCodeInvalidInput},
		{"no endpoints", `{"edges": [{"source": {"x": 0, "y": 0}}]}`, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	doc := &Document{
		Edges: []bundle.Edge{
			{Source: curve.Pt(0, 0), Target: curve.Pt(10, 0), Metadata: map[string]any{"type": "x"}},
			{Source: curve.Pt(-1.5, 2), Target: curve.Pt(3, 4)},
		},
		Styles: []bundle.Style{{Opacity: 0.25}, {}},
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, doc); err != nil {
		t.Fatal(err)
	}
	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(doc, back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestImportExportJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edges.json")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := ImportJSON(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Edges) != 3 {
		t.Errorf("edges = %d, want 3", len(doc.Edges))
	}

	out := filepath.Join(dir, "out.json")
	if err := ExportJSON(out, doc); err != nil {
		t.Fatal(err)
	}
	again, err := ImportJSON(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Edges) != 3 {
		t.Errorf("re-imported edges = %d, want 3", len(again.Edges))
	}

	if _, err := ImportJSON(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
}
