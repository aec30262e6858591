package bundle

import (
	"math"
	"testing"

	"honnef.co/go/curve"
)

func stateFrom(pts ...curve.Point) *edgeState {
	s := &edgeState{bundling: true}
	for _, p := range pts {
		s.points = append(s.points, ControlPoint{Position: p})
	}
	s.chord = pts[0].Distance(pts[len(pts)-1])
	return s
}

func zigzag(n int) *edgeState {
	pts := make([]curve.Point, n)
	for i := range pts {
		y := 0.0
		if i%2 == 1 && i < n-1 {
			y = 4
		}
		pts[i] = curve.Pt(float64(i)*10, y)
	}
	return stateFrom(pts...)
}

func roughness(pts []curve.Point) float64 {
	var r float64
	for i := 1; i < len(pts)-1; i++ {
		r += pts[i].Distance(pts[i-1].Midpoint(pts[i+1]))
	}
	return r
}

var allSmoothing = []SmoothingType{SmoothingLaplacian, SmoothingGaussian, SmoothingBilateral}

func TestSmoothStraightLineIsFixedPoint(t *testing.T) {
	for _, mode := range allSmoothing {
		t.Run(string(mode), func(t *testing.T) {
			s := plan(edge(0, 0, 120, 60), DefaultConfig(), 0)
			before := s.positions()
			smooth([]*edgeState{s}, mode, 5)
			for k, p := range s.positions() {
				if !near(p, before[k]) {
					t.Errorf("point %d moved from %v to %v", k, before[k], p)
				}
			}
		})
	}
}

func TestSmoothReducesJitter(t *testing.T) {
	for _, mode := range allSmoothing {
		t.Run(string(mode), func(t *testing.T) {
			s := zigzag(12)
			before := roughness(s.positions())
			smooth([]*edgeState{s}, mode, 2)
			after := roughness(s.positions())
			if !(after < before) {
				t.Errorf("roughness %g -> %g, want decrease", before, after)
			}
		})
	}
}

func TestSmoothPinsEndpoints(t *testing.T) {
	for _, mode := range allSmoothing {
		s := zigzag(9)
		s.points[0].Position = curve.Pt(-5, 3)
		s.points[8].Position = curve.Pt(95, -7)
		smooth([]*edgeState{s}, mode, 10)
		if s.points[0].Position != curve.Pt(-5, 3) || s.points[8].Position != curve.Pt(95, -7) {
			t.Errorf("%s: endpoints moved", mode)
		}
	}
}

func TestSmoothSkipsNonBundling(t *testing.T) {
	s := zigzag(5)
	s.bundling = false
	before := s.positions()
	smooth([]*edgeState{s}, SmoothingLaplacian, 3)
	for k, p := range s.positions() {
		if p != before[k] {
			t.Errorf("non-bundling point %d moved", k)
		}
	}
}

func TestLaplacianStep(t *testing.T) {
	s := stateFrom(curve.Pt(0, 0), curve.Pt(5, 10), curve.Pt(10, 0))
	smooth([]*edgeState{s}, SmoothingLaplacian, 1)
	if got := s.points[1].Position; !near(got, curve.Pt(5, 5)) {
		t.Errorf("got %v, want (5, 5)", got)
	}
}

func TestBilateralPreservesSharpTurnBetterThanGaussian(t *testing.T) {
	corner := func() *edgeState {
		return stateFrom(
			curve.Pt(0, 0), curve.Pt(10, 0), curve.Pt(20, 0), curve.Pt(30, 0),
			curve.Pt(30, 10), curve.Pt(30, 20), curve.Pt(30, 30),
		)
	}
	g, b := corner(), corner()
	smooth([]*edgeState{g}, SmoothingGaussian, 1)
	smooth([]*edgeState{b}, SmoothingBilateral, 1)

	apex := curve.Pt(30, 0)
	dg := g.points[3].Position.Distance(apex)
	db := b.points[3].Position.Distance(apex)
	if !(db < dg) {
		t.Errorf("bilateral moved corner %g, gaussian %g; want bilateral < gaussian", db, dg)
	}
}

func TestMeanSegment(t *testing.T) {
	pts := []curve.Point{curve.Pt(0, 0), curve.Pt(3, 4), curve.Pt(3, 10)}
	if got := meanSegment(pts); math.Abs(got-5.5) > eps {
		t.Errorf("meanSegment = %g, want 5.5", got)
	}
}
