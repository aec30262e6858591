package bundle

import (
	"math"
	"testing"

	"honnef.co/go/curve"
)

const eps = 1e-9

func edge(x0, y0, x1, y1 float64) Edge {
	return Edge{Source: curve.Pt(x0, y0), Target: curve.Pt(x1, y1)}
}

func near(a, b curve.Point) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

// midpoint returns the middle control point of a result.
func midpoint(t *testing.T, r Result) curve.Point {
	t.Helper()
	if len(r.ControlPoints) < 3 {
		t.Fatalf("expected interior control points, got %d points", len(r.ControlPoints))
	}
	return r.ControlPoints[len(r.ControlPoints)/2]
}

// onChord reports whether every control point lies on the straight segment
// between the first and last point.
func onChord(pts []curve.Point) bool {
	a, b := pts[0], pts[len(pts)-1]
	chord := b.Sub(a)
	l := chord.Hypot()
	for _, p := range pts {
		if math.Abs(chord.Cross(p.Sub(a)))/l > eps {
			return false
		}
	}
	return true
}
