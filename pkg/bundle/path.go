package bundle

import (
	"math"

	"honnef.co/go/curve"
)

// PathOp is a path command verb, using SVG letters.
type PathOp string

// Path command verbs.
const (
	OpMoveTo  PathOp = "M"
	OpLineTo  PathOp = "L"
	OpCubicTo PathOp = "C"
)

// PathCommand is one renderer-agnostic drawing instruction. MoveTo and
// LineTo carry one point; CubicTo carries two control points and the end
// point.
type PathCommand struct {
	Op     PathOp        `json:"op"`
	Points []curve.Point `json:"points"`
}

const catmullRomAlpha = 0.5

// toPath interpolates pts with the given curve type. A two-point sequence
// is a straight line: linear paths draw it with L, the others with a
// straight cubic so every curved path keeps the same command shape.
// Degenerate sequences (one point, or two coincident ones) become M p L p.
func toPath(pts []curve.Point, ct CurveType, tension float64) curve.BezPath {
	var bp curve.BezPath
	switch len(pts) {
	case 0:
		return bp
	case 1:
		bp.MoveTo(pts[0])
		bp.LineTo(pts[0])
		return bp
	case 2:
		bp.MoveTo(pts[0])
		if ct == CurveLinear || pts[0] == pts[1] {
			bp.LineTo(pts[1])
		} else {
			bp.CubicTo(lin2(pts[0], 2.0/3, pts[1], 1.0/3), lin2(pts[0], 1.0/3, pts[1], 2.0/3), pts[1])
		}
		return bp
	}

	switch ct {
	case CurveLinear:
		linearPath(&bp, pts)
	case CurveCardinal:
		cardinalPath(&bp, pts, tension)
	case CurveCatmullRom:
		catmullRomPath(&bp, pts)
	default:
		basisPath(&bp, pts)
	}
	return bp
}

func linearPath(bp *curve.BezPath, pts []curve.Point) {
	bp.MoveTo(pts[0])
	for _, p := range pts[1:] {
		bp.LineTo(p)
	}
}

// basisPath emits a uniform cubic B-spline that starts and ends on the
// first and last points.
func basisPath(bp *curve.BezPath, pts []curve.Point) {
	p0, p1 := pts[0], pts[1]
	bezier := func(p curve.Point) {
		bp.CubicTo(
			lin2(p0, 2.0/3, p1, 1.0/3),
			lin2(p0, 1.0/3, p1, 2.0/3),
			curve.Pt((p0.X+4*p1.X+p.X)/6, (p0.Y+4*p1.Y+p.Y)/6),
		)
	}

	bp.MoveTo(p0)
	bp.LineTo(lin2(p0, 5.0/6, p1, 1.0/6))
	for _, p := range pts[2:] {
		bezier(p)
		p0, p1 = p1, p
	}
	bezier(p1)
	bp.LineTo(p1)
}

// cardinalPath emits Hermite segments through every point. tension 0
// yields straight chords; 1 matches a uniform Catmull-Rom spline.
func cardinalPath(bp *curve.BezPath, pts []curve.Point, tension float64) {
	k := tension / 6
	n := len(pts)
	bp.MoveTo(pts[0])
	for i := 0; i < n-1; i++ {
		p0 := pts[max(i-1, 0)]
		p1, p2 := pts[i], pts[i+1]
		p3 := pts[min(i+2, n-1)]
		bp.CubicTo(
			p1.Translate(p2.Sub(p0).Mul(k)),
			p2.Translate(p3.Sub(p1).Mul(-k)),
			p2,
		)
	}
}

// catmullRomPath emits a centripetal Catmull-Rom spline, which never forms
// cusps or self-intersections within a segment.
func catmullRomPath(bp *curve.BezPath, pts []curve.Point) {
	const eps = 1e-12
	// Distances raised to alpha and to 2*alpha.
	pw := func(a, b curve.Point) (float64, float64) {
		d2 := a.DistanceSquared(b)
		return math.Pow(d2, catmullRomAlpha/2), math.Pow(d2, catmullRomAlpha)
	}

	n := len(pts)
	bp.MoveTo(pts[0])
	for i := 0; i < n-1; i++ {
		p1, p2 := pts[i], pts[i+1]
		c1, c2 := p1, p2
		l12a, l12a2 := pw(p1, p2)

		if i > 0 {
			p0 := pts[i-1]
			if l01a, l01a2 := pw(p0, p1); l01a > eps {
				a := 2*l01a2 + 3*l01a*l12a + l12a2
				d := 3 * l01a * (l01a + l12a)
				c1 = curve.Pt(
					(p1.X*a-p0.X*l12a2+p2.X*l01a2)/d,
					(p1.Y*a-p0.Y*l12a2+p2.Y*l01a2)/d,
				)
			}
		}
		if i+2 < n {
			p3 := pts[i+2]
			if l23a, l23a2 := pw(p2, p3); l23a > eps {
				b := 2*l23a2 + 3*l23a*l12a + l12a2
				d := 3 * l23a * (l23a + l12a)
				c2 = curve.Pt(
					(p2.X*b+p1.X*l23a2-p3.X*l12a2)/d,
					(p2.Y*b+p1.Y*l23a2-p3.Y*l12a2)/d,
				)
			}
		}
		bp.CubicTo(c1, c2, p2)
	}
}

// commands converts a BezPath into path commands.
func commands(bp curve.BezPath) []PathCommand {
	out := make([]PathCommand, 0, len(bp))
	for _, el := range bp {
		switch el.Kind {
		case curve.MoveToKind:
			out = append(out, PathCommand{Op: OpMoveTo, Points: []curve.Point{el.P0}})
		case curve.LineToKind:
			out = append(out, PathCommand{Op: OpLineTo, Points: []curve.Point{el.P0}})
		case curve.CubicToKind:
			out = append(out, PathCommand{Op: OpCubicTo, Points: []curve.Point{el.P0, el.P1, el.P2}})
		}
	}
	return out
}

// bezPath rebuilds a BezPath from path commands.
func bezPath(cmds []PathCommand) curve.BezPath {
	bp := make(curve.BezPath, 0, len(cmds))
	for _, c := range cmds {
		switch {
		case c.Op == OpMoveTo && len(c.Points) == 1:
			bp.MoveTo(c.Points[0])
		case c.Op == OpLineTo && len(c.Points) == 1:
			bp.LineTo(c.Points[0])
		case c.Op == OpCubicTo && len(c.Points) == 3:
			bp.CubicTo(c.Points[0], c.Points[1], c.Points[2])
		}
	}
	return bp
}

func lin2(a curve.Point, wa float64, b curve.Point, wb float64) curve.Point {
	return curve.Pt(a.X*wa+b.X*wb, a.Y*wa+b.Y*wb)
}

