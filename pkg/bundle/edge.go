package bundle

import (
	"math"

	"honnef.co/go/curve"
)

// Edge is one input edge. Edges are read-only for the engine; Metadata is
// passed through untouched to compatibility and style callbacks.
type Edge struct {
	Source   curve.Point
	Target   curve.Point
	Metadata map[string]any
}

// Chord returns the vector from Source to Target.
func (e Edge) Chord() curve.Vec2 { return e.Target.Sub(e.Source) }

// Length returns the chord length.
func (e Edge) Length() float64 { return e.Source.Distance(e.Target) }

// Midpoint returns the midpoint of the chord.
func (e Edge) Midpoint() curve.Point { return e.Source.Midpoint(e.Target) }

// IsDegenerate reports whether the edge has zero length or a non-finite
// endpoint. Degenerate edges take no part in bundling.
func (e Edge) IsDegenerate() bool {
	l := e.Length()
	return !(l > 0) || math.IsInf(l, 0)
}

// Meta returns the metadata value for key, or nil.
func (e Edge) Meta(key string) any {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata[key]
}

func finite(p curve.Point) bool {
	return !p.IsNaN() && !p.IsInf()
}
