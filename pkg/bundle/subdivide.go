package bundle

import (
	"math"

	"honnef.co/go/curve"
)

// plan builds the initial polyline for e: both endpoints plus k evenly
// spaced interior points on the chord. ref is the reference chord length
// used by adaptive subdivision.
func plan(e Edge, cfg Config, ref float64) *edgeState {
	src, dst, ok := sanitize(e)
	s := &edgeState{edge: e}
	if !ok {
		s.degenerate = true
		s.points = []ControlPoint{{Position: src}, {Position: dst}}
		return s
	}

	s.chord = src.Distance(dst)
	k := interiorCount(s.chord, cfg, ref)
	s.points = make([]ControlPoint, k+2)
	for i := range s.points {
		t := float64(i) / float64(k+1)
		s.points[i].Position = src.Lerp(dst, t)
	}
	// Pin endpoints exactly; Lerp(1) can be off by one ulp.
	s.points[0].Position = src
	s.points[k+1].Position = dst
	s.bundling = k > 0
	return s
}

// interiorCount returns the number of interior control points for a chord
// of the given length.
func interiorCount(chord float64, cfg Config, ref float64) int {
	if cfg.Subdivisions <= 0 {
		return 0
	}
	if !cfg.AdaptiveSubdivision {
		return cfg.Subdivisions
	}
	if !(ref > 0) || math.IsInf(ref, 0) {
		return cfg.Subdivisions
	}
	k := math.Floor(float64(cfg.Subdivisions) * chord / ref)
	if !(k > 0) {
		return 0
	}
	// Guard against absurd ratios overflowing int.
	if k > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(k)
}

// ControlPointCount returns how many control points a render of edges with
// cfg allocates, saturating at math.MaxInt. Front ends use it to bound the
// work of a request before rendering.
func ControlPointCount(edges []Edge, cfg Config) int {
	cfg = cfg.Normalize()
	ref := 0.0
	if cfg.AdaptiveSubdivision {
		ref = referenceLength(edges, cfg)
	}
	total := 0
	for _, e := range edges {
		k := 0
		if src, dst, ok := sanitize(e); ok {
			k = interiorCount(src.Distance(dst), cfg, ref)
		}
		if k > math.MaxInt-2-total {
			return math.MaxInt
		}
		total += k + 2
	}
	return total
}

// referenceLength picks the chord length that maps to cfg.Subdivisions in
// adaptive mode: the configured value if positive, otherwise the mean
// length of the non-degenerate edges.
func referenceLength(edges []Edge, cfg Config) float64 {
	if cfg.ReferenceLength > 0 {
		return cfg.ReferenceLength
	}
	var sum float64
	var n int
	for _, e := range edges {
		if e.IsDegenerate() {
			continue
		}
		sum += e.Length()
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// sanitize returns usable endpoints for e and whether the edge can take
// part in bundling. A non-finite endpoint collapses onto the finite one,
// or onto the origin when neither is finite, so the emitted geometry is
// always a valid zero-length segment.
func sanitize(e Edge) (src, dst curve.Point, ok bool) {
	sf, tf := finite(e.Source), finite(e.Target)
	switch {
	case sf && tf:
		if e.IsDegenerate() {
			return e.Source, e.Target, false
		}
		return e.Source, e.Target, true
	case sf:
		return e.Source, e.Source, false
	case tf:
		return e.Target, e.Target, false
	}
	return curve.Point{}, curve.Point{}, false
}
