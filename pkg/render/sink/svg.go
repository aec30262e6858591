package sink

import (
	"bytes"
	"fmt"
	"html"

	"honnef.co/go/curve"

	"github.com/matzehuels/edgebundle/pkg/bundle"
)

// DefaultMargin is the space kept around the bundled paths.
const DefaultMargin = 10.0

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	width, height float64
	margin        float64
	background    string
	override      bundle.Style
}

// WithSize sets the rendered width and height. Zero keeps the size of the
// fitted viewBox.
func WithSize(w, h float64) SVGOption {
	return func(r *svgRenderer) { r.width, r.height = w, h }
}

// WithMargin sets the margin around the paths. Negative values are ignored.
func WithMargin(m float64) SVGOption {
	return func(r *svgRenderer) {
		if m >= 0 {
			r.margin = m
		}
	}
}

// WithBackground fills the viewBox with a solid color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithStrokeOverride paints every path with the non-zero fields of st,
// taking precedence over per-result styles.
func WithStrokeOverride(st bundle.Style) SVGOption { return func(r *svgRenderer) { r.override = st } }

// RenderSVG writes results as a standalone SVG document.
func RenderSVG(results []bundle.Result, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	paths := make([]string, len(results))
	var box curve.Rect
	for i, res := range results {
		paths[i] = res.SVG()
		if i == 0 {
			box = res.Bounds()
		} else {
			box = box.Union(res.Bounds())
		}
	}
	box = box.Inflate(r.margin, r.margin)

	w, h := r.width, r.height
	if w <= 0 {
		w = box.Width()
	}
	if h <= 0 {
		h = box.Height()
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" width="%.0f" height="%.0f">`+"\n",
		num(box.X0), num(box.Y0), num(box.Width()), num(box.Height()), w, h)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
			num(box.X0), num(box.Y0), num(box.Width()), num(box.Height()), html.EscapeString(r.background))
	}

	buf.WriteString(`  <g class="edges" fill="none" stroke-linecap="round">` + "\n")
	for i, res := range results {
		st := res.Style.Merge(r.override)
		fmt.Fprintf(&buf, `    <path id="edge-%d" d="%s" stroke="%s" stroke-width="%s" stroke-opacity="%s"/>`+"\n",
			i, paths[i], html.EscapeString(st.Stroke), num(st.Width), num(st.Opacity))
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{margin: DefaultMargin}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// num formats a coordinate without trailing zeros.
func num(v float64) string {
	return fmt.Sprintf("%.6g", v)
}
