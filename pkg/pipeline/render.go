package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/edgebundle/pkg/bundle"
	edgeio "github.com/matzehuels/edgebundle/pkg/io"
	"github.com/matzehuels/edgebundle/pkg/observability"
	"github.com/matzehuels/edgebundle/pkg/render/sink"
)

// Bundle runs the bundling engine over doc.
func Bundle(ctx context.Context, doc *edgeio.Document, opts Options) ([]bundle.Result, bundle.Stats, error) {
	return bundle.RenderContext(ctx, doc.Edges, opts.Config, bundleOptions(doc, opts)...)
}

func bundleOptions(doc *edgeio.Document, opts Options) []bundle.Option {
	bopts := []bundle.Option{bundle.WithLogger(opts.Logger)}
	if opts.Progress != nil {
		bopts = append(bopts, bundle.WithProgress(opts.Progress))
	}
	if base := opts.baseStyle(); base != (bundle.Style{}) {
		bopts = append(bopts, bundle.WithStyles(constantStyles(base)))
	}
	if doc.Styles != nil {
		bopts = append(bopts, bundle.WithStyleTable(doc.Styles))
	}
	return bopts
}

// constantStyles returns accessors applying the non-zero fields of st to
// every edge.
func constantStyles(st bundle.Style) bundle.StyleAccessors {
	base := bundle.DefaultStyle().Merge(st)
	return bundle.StyleAccessors{
		Stroke:  func(bundle.Edge, int) string { return base.Stroke },
		Width:   func(bundle.Edge, int) float64 { return base.Width },
		Opacity: func(bundle.Edge, int) float64 { return base.Opacity },
	}
}

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, results []bundle.Result, doc *edgeio.Document, stats bundle.Stats, opts Options) (artifacts map[string][]byte, err error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	svgOpts := svgOptions(opts)
	artifacts = make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		switch format {
		case FormatSVG:
			data = sink.RenderSVG(results, svgOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(results,
				sink.WithJSONStats(stats),
				sink.WithJSONEdges(doc.Edges),
				sink.WithJSONConfig(opts.Config.Normalize()),
			)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, results, sink.WithPDFSVGOptions(svgOpts...))
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, results, sink.WithPNGSVGOptions(svgOpts...), sink.WithScale(DefaultScale))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func svgOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithSize(opts.Width, opts.Height)}
	if opts.Margin != nil {
		svgOpts = append(svgOpts, sink.WithMargin(*opts.Margin))
	}
	if opts.Background != "" {
		svgOpts = append(svgOpts, sink.WithBackground(opts.Background))
	}
	return svgOpts
}
