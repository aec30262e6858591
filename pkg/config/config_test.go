package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/edgebundle/pkg/bundle"
	"github.com/matzehuels/edgebundle/pkg/errors"
)

const tomlDoc = `
[bundle]
subdivisions = 12
compatibility_threshold = 0.4
curve_type = "catmull-rom"
smoothing_type = "gaussian"

[render]
formats = ["svg", "json"]
width = 1200.0

[cache]
ttl = "48h"

[server]
addr = ":9090"
timeout = "5s"
`

const yamlDoc = `
bundle:
  subdivisions: 12
  compatibility_threshold: 0.4
  curve_type: catmull-rom
  smoothing_type: gaussian
render:
  formats: [svg, json]
  width: 1200
cache:
  ttl: 48h
server:
  addr: ":9090"
  timeout: 5s
`

func TestDecodeFormats(t *testing.T) {
	for format, doc := range map[string]string{FormatTOML: tomlDoc, FormatYAML: yamlDoc} {
		t.Run(format, func(t *testing.T) {
			f, err := Decode(strings.NewReader(doc), format)
			if err != nil {
				t.Fatal(err)
			}
			if f.Bundle.Subdivisions != 12 || f.Bundle.CompatibilityThreshold != 0.4 {
				t.Errorf("bundle = %+v", f.Bundle)
			}
			if f.Bundle.CurveType != bundle.CurveCatmullRom || f.Bundle.SmoothingType != bundle.SmoothingGaussian {
				t.Errorf("curve/smoothing = %s/%s", f.Bundle.CurveType, f.Bundle.SmoothingType)
			}
			// Keys absent from the file keep their defaults.
			if f.Bundle.Iterations != bundle.DefaultIterations || f.Bundle.Momentum != bundle.DefaultMomentum {
				t.Errorf("defaults lost: %+v", f.Bundle)
			}
			if len(f.Render.Formats) != 2 || f.Render.Width != 1200 {
				t.Errorf("render = %+v", f.Render)
			}
			if ttl, _ := f.Cache.TTLDuration(); ttl != 48*time.Hour {
				t.Errorf("ttl = %v", ttl)
			}
			if timeout, _ := f.Server.TimeoutDuration(); timeout != 5*time.Second {
				t.Errorf("timeout = %v", timeout)
			}
			if f.Server.Addr != ":9090" || f.Server.MaxBody != DefaultMaxBody {
				t.Errorf("server = %+v", f.Server)
			}
		})
	}
}

func TestDecodeEmptyUsesDefaults(t *testing.T) {
	for _, format := range []string{FormatTOML, FormatYAML} {
		f, err := Decode(strings.NewReader(""), format)
		if err != nil {
			t.Fatalf("%s: %v", format, err)
		}
		if diff := cmp.Diff(bundle.DefaultConfig(), f.Bundle); diff != "" {
			t.Errorf("%s: bundle mismatch (-want +got):\n%s", format, diff)
		}
		if d, _ := f.Server.TimeoutDuration(); d != DefaultTimeout {
			t.Errorf("%s: timeout = %v", format, d)
		}
		if f.Server.MaxControlPoints != DefaultMaxControlPoints {
			t.Errorf("%s: max control points = %d", format, f.Server.MaxControlPoints)
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		doc    string
		code   errors.Code
	}{
		{"bad toml", FormatTOML, "[bundle\n", errors.ErrCodeInvalidConfig},
		{"unknown toml key", FormatTOML, "[bundle]\nsubdivide = 3\n", errors.ErrCodeInvalidConfig},
		{"unknown yaml key", FormatYAML, "bundle:\n  subdivide: 3\n", errors.ErrCodeInvalidConfig},
		{"bad curve", FormatTOML, "[bundle]\ncurve_type = \"spiral\"\n", errors.ErrCodeInvalidCurveType},
		{"bad threshold", FormatYAML, "bundle:\n  compatibility_threshold: 3\n", errors.ErrCodeInvalidConfig},
		{"bad ttl", FormatTOML, "[cache]\nttl = \"forever\"\n", errors.ErrCodeInvalidConfig},
		{"bad redis", FormatTOML, "[cache]\nredis = \"http://x\"\n", errors.ErrCodeInvalidConfig},
		{"negative width", FormatYAML, "render:\n  width: -1\n", errors.ErrCodeInvalidConfig},
		{"negative point limit", FormatTOML, "[server]\nmax_control_points = -5\n", errors.ErrCodeInvalidConfig},
		{"unknown format", "ini", "", errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bundle.toml")
	if err := os.WriteFile(path, []byte(tomlDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if f.Bundle.Subdivisions != 12 {
		t.Errorf("subdivisions = %d", f.Bundle.Subdivisions)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file err = %v", err)
	}
	if _, err := Load(filepath.Join(dir, "bundle.ini")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ini err = %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"a.toml":     FormatTOML,
		"b.YAML":     FormatYAML,
		"dir/c.yml":  FormatYAML,
		"noext":      "",
		"edges.json": "",
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if got != want || (want == "") != (err != nil) {
			t.Errorf("FormatFromPath(%q) = %q, %v; want %q", path, got, err, want)
		}
	}
}
