// Package pkg provides the libraries behind edgebundle.
//
// # Overview
//
// Edgebundle turns a drawn graph into bundled edges: each straight edge is
// subdivided into control points, compatible edges attract each other in a
// force simulation, and the settled points become smooth curves. Node
// placement comes from elsewhere (the input document or a Graphviz layout).
//
// # Architecture
//
// The typical data flow:
//
//	edge document (JSON) or DOT graph
//	         ↓
//	    [io], [source/dot], [source/remote]  (decode, lay out, fetch)
//	         ↓
//	    [bundle]  (subdivide → compatibility → forces → smoothing → curves)
//	         ↓
//	    [render/sink]  (SVG, JSON, PDF, PNG)
//
// [pipeline] ties these together and caches results through [cache].
//
// # Quick Start
//
//	import "github.com/matzehuels/edgebundle/pkg/bundle"
//
//	edges := []bundle.Edge{
//	    {Source: curve.Pt(0, 0), Target: curve.Pt(100, 0)},
//	    {Source: curve.Pt(0, 10), Target: curve.Pt(100, 10)},
//	}
//	results, err := bundle.Render(edges, bundle.DefaultConfig())
//	for _, r := range results {
//	    fmt.Println(r.SVG())
//	}
//
// # Main Packages
//
// [bundle] - The bundling engine. Pure computation with no I/O; safe for
// concurrent use with separate inputs.
//
// [io] - The JSON edge document format: nodes with positions, edges by id or
// inline endpoints, optional metadata and per-edge style.
//
// [source/dot] - Graphviz DOT input laid out with go-graphviz.
//
// [source/remote] - Fetching inputs over HTTP with retries.
//
// [render/sink] - Output encoders for bundled results.
//
// [pipeline] - Parse, bundle and render with result caching, shared by the
// CLI and the HTTP server.
//
// [cache] - File, Redis and no-op caches plus key derivation.
//
// [config] - TOML and YAML configuration files.
//
// [observability] - Hook interfaces for metrics and tracing, with a
// Prometheus implementation in [observability/prom].
//
// [errors] - Coded errors shared across packages.
//
// [buildinfo] - Version information set at build time.
package pkg
