package pipeline

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/edgebundle/pkg/errors"
	edgeio "github.com/matzehuels/edgebundle/pkg/io"
	"github.com/matzehuels/edgebundle/pkg/observability"
	"github.com/matzehuels/edgebundle/pkg/source/dot"
)

// DetectFormat guesses the input format from a file name.
// .dot and .gv are DOT; everything else is treated as JSON.
func DetectFormat(source string) string {
	switch strings.ToLower(filepath.Ext(source)) {
	case ".dot", ".gv":
		return InputDOT
	}
	return InputJSON
}

// Parse decodes data as an edge document. source names the input for
// format detection and error messages.
func Parse(ctx context.Context, data []byte, source string, opts Options) (doc *edgeio.Document, err error) {
	format := opts.InputFormat
	if format == "" {
		format = DetectFormat(source)
	}

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, format, source)
	start := time.Now()
	defer func() {
		edges := 0
		if doc != nil {
			edges = len(doc.Edges)
		}
		hooks.OnParseComplete(ctx, format, source, edges, time.Since(start), err)
	}()

	switch format {
	case InputJSON:
		return edgeio.ReadJSON(bytes.NewReader(data))
	case InputDOT:
		return dot.ReadDOT(ctx, data, dot.Layout(opts.Layout))
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported input format: %s", format)
}
