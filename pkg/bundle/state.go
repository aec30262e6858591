package bundle

import "honnef.co/go/curve"

// ControlPoint is one vertex of an edge's polyline during simulation.
// Velocity carries momentum between iterations and means nothing after
// the render returns.
type ControlPoint struct {
	Position curve.Point
	Velocity curve.Vec2
}

// edgeState is the working polyline of one edge. It is created by plan,
// mutated by relax and smooth, and read by toPath. points[0] and
// points[len-1] are the pinned endpoints.
type edgeState struct {
	edge     Edge
	points   []ControlPoint
	chord    float64
	bundling bool

	// degenerate is set when the input edge had zero length or a
	// non-finite endpoint.
	degenerate bool
}

// chordPoint returns the point at parameter t on the straight chord.
func (s *edgeState) chordPoint(t float64) curve.Point {
	first := s.points[0].Position
	last := s.points[len(s.points)-1].Position
	return first.Lerp(last, t)
}

// param returns the chord parameter of control point i.
func (s *edgeState) param(i int) float64 {
	n := len(s.points)
	if n < 2 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// positions returns a copy of the current point positions.
func (s *edgeState) positions() []curve.Point {
	out := make([]curve.Point, len(s.points))
	for i, cp := range s.points {
		out[i] = cp.Position
	}
	return out
}

func (s *edgeState) interior() int {
	if len(s.points) < 2 {
		return 0
	}
	return len(s.points) - 2
}
