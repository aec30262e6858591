// Package render holds format conversion shared by the output sinks.
//
// [ToPDF] and [ToPNG] convert an SVG document using the external
// rsvg-convert tool from librsvg. The bundle sinks in [sink] produce the
// SVG; this package only converts it.
//
//	svg := sink.RenderSVG(results)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// When rsvg-convert is missing the conversion functions return an
// UNSUPPORTED error carrying install instructions.
//
// [sink]: github.com/matzehuels/edgebundle/pkg/render/sink
package render
