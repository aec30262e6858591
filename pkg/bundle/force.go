package bundle

import (
	"context"
	"math"

	"honnef.co/go/curve"
)

// simulator owns the force scratch buffers of one render.
type simulator struct {
	states []*edgeState
	table  *compatibility
	cfg    Config
	forces [][]curve.Vec2
}

func newSimulator(states []*edgeState, table *compatibility, cfg Config) *simulator {
	forces := make([][]curve.Vec2, len(states))
	for i, s := range states {
		if s.bundling {
			forces[i] = make([]curve.Vec2, len(s.points))
		}
	}
	return &simulator{states: states, table: table, cfg: cfg, forces: forces}
}

// relax runs cfg.Iterations force rounds, smoothing every
// cfg.SmoothingFrequency rounds. onIteration, if non-nil, is called after
// each round with its 1-based index.
func (sim *simulator) relax(ctx context.Context, onIteration func(int)) error {
	cfg := sim.cfg
	for it := 1; it <= cfg.Iterations; it++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		sim.step()
		if cfg.SmoothingFrequency > 0 && it%cfg.SmoothingFrequency == 0 {
			smooth(sim.states, cfg.SmoothingType, cfg.SmoothingIterations)
		}
		if onIteration != nil {
			onIteration(it)
		}
	}
	return nil
}

// step performs one Jacobi round: every force is computed from the
// positions of the previous round before any point moves.
func (sim *simulator) step() {
	for i, s := range sim.states {
		if !s.bundling {
			continue
		}
		f := sim.forces[i]
		for k := 1; k < len(s.points)-1; k++ {
			f[k] = sim.force(i, k)
		}
	}

	m := sim.cfg.Momentum
	h := sim.cfg.StepSize
	for i, s := range sim.states {
		if !s.bundling {
			continue
		}
		f := sim.forces[i]
		maxStep := s.chord / float64(len(s.points)-1)
		for k := 1; k < len(s.points)-1; k++ {
			cp := &s.points[k]
			v := cp.Velocity.Mul(m).Add(f[k].Mul((1 - m) * h))
			v = limit(v, maxStep)
			cp.Velocity = v
			cp.Position = cp.Position.Translate(v)
		}
	}
}

// force returns the combined spring and bundling force on control point k
// of edge i.
func (sim *simulator) force(i, k int) curve.Vec2 {
	s := sim.states[i]
	p := s.points[k].Position
	f := s.chordPoint(s.param(k)).Sub(p).Mul(sim.cfg.Stiffness)

	// Each neighbour pulls with magnitude score*chord/(dist+seg): the
	// closest and most compatible edges pull hardest, and the segment
	// length bounds the pull at zero distance.
	n := len(s.points)
	seg := s.chord / float64(n-1)
	for _, nb := range sim.table.neighbors[i] {
		q := sim.states[nb.idx]
		j := correspondingIndex(k, n, len(q.points), nb.reversed)
		d := q.points[j].Position.Sub(p)
		dist := d.Hypot()
		if dist == 0 {
			continue
		}
		f = f.Add(d.Mul(nb.score * s.chord / (dist * (dist + seg))))
	}
	return f
}

// correspondingIndex maps control point i of an n-point polyline onto an
// m-point polyline by chord parameter.
func correspondingIndex(i, n, m int, reversed bool) int {
	if reversed {
		i = n - 1 - i
	}
	if n == m {
		return i
	}
	if n < 2 || m < 2 {
		return 0
	}
	return int(math.Round(float64(i) * float64(m-1) / float64(n-1)))
}

// limit caps the length of v at maxLen and zeroes non-finite vectors.
func limit(v curve.Vec2, maxLen float64) curve.Vec2 {
	if v.IsNaN() || v.IsInf() {
		return curve.Vec2{}
	}
	l := v.Hypot()
	if l > maxLen && l > 0 {
		return v.Mul(maxLen / l)
	}
	return v
}
