package bundle

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"honnef.co/go/curve"
)

const (
	laplacianWeight = 0.5
	gaussianRadius  = 2
	gaussianSigma   = 1.0
)

// smooth applies passes rounds of the given smoothing mode to every
// bundling edge. Endpoints never move.
func smooth(states []*edgeState, mode SmoothingType, passes int) {
	if passes <= 0 {
		return
	}
	var sm smoother
	for _, s := range states {
		if !s.bundling || len(s.points) < 3 {
			continue
		}
		for range passes {
			sm.apply(s, mode)
		}
	}
}

// smoother carries scratch buffers reused across edges.
type smoother struct {
	snap    []curve.Point
	weights []float64
	xs, ys  []float64
}

func (sm *smoother) apply(s *edgeState, mode SmoothingType) {
	sm.snap = sm.snap[:0]
	for _, cp := range s.points {
		sm.snap = append(sm.snap, cp.Position)
	}
	n := len(sm.snap)

	var sigmaR float64
	if mode == SmoothingBilateral {
		sigmaR = meanSegment(sm.snap)
		if !(sigmaR > 0) {
			return
		}
	}

	for i := 1; i < n-1; i++ {
		p := sm.snap[i]
		switch mode {
		case SmoothingGaussian:
			s.points[i].Position = sm.kernel(i, 0)
		case SmoothingBilateral:
			s.points[i].Position = sm.kernel(i, sigmaR)
		default:
			mid := sm.snap[i-1].Midpoint(sm.snap[i+1])
			s.points[i].Position = p.Lerp(mid, laplacianWeight)
		}
	}
}

// kernel returns the weighted average around snap[i]. The window shrinks
// symmetrically near the ends so evenly spaced straight polylines are
// fixed points. A positive sigmaR adds the bilateral range term.
func (sm *smoother) kernel(i int, sigmaR float64) curve.Point {
	n := len(sm.snap)
	r := min(gaussianRadius, i, n-1-i)
	p := sm.snap[i]

	sm.weights, sm.xs, sm.ys = sm.weights[:0], sm.xs[:0], sm.ys[:0]
	for k := -r; k <= r; k++ {
		q := sm.snap[i+k]
		w := math.Exp(-float64(k*k) / (2 * gaussianSigma * gaussianSigma))
		if sigmaR > 0 {
			w *= math.Exp(-p.DistanceSquared(q) / (2 * sigmaR * sigmaR))
		}
		sm.weights = append(sm.weights, w)
		sm.xs = append(sm.xs, q.X)
		sm.ys = append(sm.ys, q.Y)
	}
	total := floats.Sum(sm.weights)
	if !(total > 0) {
		return p
	}
	floats.Scale(1/total, sm.weights)
	return curve.Pt(floats.Dot(sm.weights, sm.xs), floats.Dot(sm.weights, sm.ys))
}

// meanSegment returns the mean distance between consecutive points.
func meanSegment(pts []curve.Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(pts); i++ {
		sum += pts[i-1].Distance(pts[i])
	}
	return sum / float64(len(pts)-1)
}
