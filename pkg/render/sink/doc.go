// Package sink turns bundled results into output documents.
//
// # Overview
//
// A "sink" takes the []bundle.Result produced by [bundle.Render] and writes
// it in a final format:
//
//   - SVG: one <path> per edge, painted with the result's style
//   - JSON: path commands, control points and SVG path data per edge
//   - PDF and PNG: the SVG converted with rsvg-convert
//
// # SVG Output
//
// [RenderSVG] fits the viewBox to the control box of every path plus a
// margin. Explicit width and height only change the rendered size, never
// the coordinate system:
//
//	svg := sink.RenderSVG(results,
//	    sink.WithMargin(20),
//	    sink.WithSize(800, 600),
//	    sink.WithBackground("#ffffff"),
//	)
//
// # JSON Output
//
// [RenderJSON] exports every result with its style, and optionally the
// run statistics and the edge metadata of the input:
//
//	data, err := sink.RenderJSON(results, sink.WithJSONStats(stats))
//
// # PDF and PNG Output
//
// [RenderPDF] and [RenderPNG] render SVG first and convert it through
// [render.ToPDF] and [render.ToPNG]. Both need librsvg installed.
//
// [bundle.Render]: github.com/matzehuels/edgebundle/pkg/bundle.Render
// [render.ToPDF]: github.com/matzehuels/edgebundle/pkg/render.ToPDF
// [render.ToPNG]: github.com/matzehuels/edgebundle/pkg/render.ToPNG
package sink
