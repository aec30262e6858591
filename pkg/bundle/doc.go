// Package bundle implements force-directed edge bundling (FDEB).
//
// # Overview
//
// Dense node-link drawings quickly become unreadable: hundreds of straight
// edges cross each other and hide any structure. Edge bundling replaces each
// straight edge with a smooth curve and pulls edges that travel in similar
// directions through similar regions of the plane towards each other, so
// that traffic between areas reads as a few thick "cables" instead of a
// hairball.
//
// The engine is a pure in-process transform. Endpoint coordinates come from
// an external layout engine; the resulting path geometry is handed to a
// renderer. Nothing is painted here.
//
// # Pipeline
//
// A call to [Render] runs five stages, leaves first:
//
//  1. Subdivision: every edge becomes a polyline of control points placed
//     evenly along its straight chord.
//  2. Compatibility: every pair of edges is scored in [0,1]. Pairs below
//     [Config.CompatibilityThreshold] never interact.
//  3. Force simulation: control points are pulled back towards their own
//     chord (spring force) and towards the corresponding points of compatible
//     edges (bundling force), integrated with momentum.
//  4. Smoothing: control point sequences are regularised periodically and
//     once at the end ([SmoothingLaplacian], [SmoothingGaussian],
//     [SmoothingBilateral]).
//  5. Curve generation: the final control points are interpolated into
//     path commands ([CurveLinear], [CurveBasis], [CurveCardinal],
//     [CurveCatmullRom]).
//
// # Guarantees
//
// [Render] always returns exactly one [Result] per input edge, in input
// order. There is no randomness anywhere: identical inputs produce
// bit-identical outputs. Endpoints never move.
//
// Failures are soft. Zero-length edges, non-finite coordinates and
// non-positive subdivision counts produce a trivial but valid path. A
// custom [CompatibilityFunc] that returns an error or panics scores the
// pair as 0 and the first failure is reported through [WithErrorReporter].
// The only hard error is a style table whose length does not match the
// number of edges.
//
// # Usage
//
//	edges := []bundle.Edge{
//	    {Source: curve.Pt(0, 0), Target: curve.Pt(100, 0)},
//	    {Source: curve.Pt(0, 10), Target: curve.Pt(100, 10)},
//	}
//	cfg := bundle.DefaultConfig()
//	results, err := bundle.Render(edges, cfg)
//	if err != nil {
//	    return err
//	}
//	for _, r := range results {
//	    fmt.Println(r.SVG())
//	}
//
// # Concurrency
//
// All simulation state is allocated per call and discarded on return; the
// package keeps no mutable globals. Independent renders may run
// concurrently. A single render is single-threaded; cancel it through
// [RenderContext].
package bundle
