package bundle

import (
	"context"
	"fmt"
	"math"
)

// CompatibilityFunc scores how strongly two edges should attract each
// other. Scores outside [0,1] are clamped. A returned error, or a panic,
// makes the pair incompatible for the rest of the render.
type CompatibilityFunc func(a, b Edge) (float64, error)

// DefaultCompatibility is the standard FDEB score: the product of angle,
// scale and position compatibility.
func DefaultCompatibility(a, b Edge) (float64, error) {
	return AngleCompatibility(a, b) * ScaleCompatibility(a, b) * PositionCompatibility(a, b), nil
}

// AngleCompatibility returns |cos θ| between the two chords.
func AngleCompatibility(a, b Edge) float64 {
	la, lb := a.Length(), b.Length()
	if !(la > 0) || !(lb > 0) {
		return 0
	}
	return clampUnit(math.Abs(a.Chord().Dot(b.Chord())) / (la * lb))
}

// ScaleCompatibility returns the ratio of the shorter chord to the longer.
func ScaleCompatibility(a, b Edge) float64 {
	la, lb := a.Length(), b.Length()
	if !(la > 0) || !(lb > 0) {
		return 0
	}
	return clampUnit(min(la, lb) / max(la, lb))
}

// PositionCompatibility decays with the distance between the two chord
// midpoints relative to their average length.
func PositionCompatibility(a, b Edge) float64 {
	lavg := (a.Length() + b.Length()) / 2
	if !(lavg > 0) {
		return 0
	}
	return clampUnit(lavg / (lavg + a.Midpoint().Distance(b.Midpoint())))
}

// neighbor is one entry in an edge's interaction list.
type neighbor struct {
	idx   int
	score float64
	// reversed is set when the two chords point in opposite directions,
	// so control points correspond back to front.
	reversed bool
}

// compatibility is the memoized pair table of one render. Scores live in
// a packed upper triangle; neighbors holds only the pairs that survived
// pruning.
type compatibility struct {
	n         int
	scores    []float64
	neighbors [][]neighbor

	failures int
	firstErr error
}

// score returns the compatibility of edges i and j. An edge is not its own
// neighbour, so score(i, i) is 0.
func (c *compatibility) score(i, j int) float64 {
	if i == j || i < 0 || j < 0 || i >= c.n || j >= c.n {
		return 0
	}
	if i > j {
		i, j = j, i
	}
	return c.scores[c.index(i, j)]
}

func (c *compatibility) index(i, j int) int {
	return i*c.n - i*(i+1)/2 + (j - i - 1)
}

// pairs returns the number of neighbour relations that survived pruning.
func (c *compatibility) pairs() int {
	var total int
	for _, nb := range c.neighbors {
		total += len(nb)
	}
	return total / 2
}

// scoreAll evaluates every unordered pair of bundling edges once. Pairs
// scoring zero or below the threshold never enter the neighbour lists.
func scoreAll(ctx context.Context, states []*edgeState, cfg Config) (*compatibility, error) {
	n := len(states)
	c := &compatibility{
		n:         n,
		scores:    make([]float64, n*(n-1)/2),
		neighbors: make([][]neighbor, n),
	}
	fn := cfg.CompatibilityFunc
	if fn == nil {
		fn = DefaultCompatibility
	}

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a := states[i]
		if !a.bundling {
			continue
		}
		for j := i + 1; j < n; j++ {
			b := states[j]
			if !b.bundling {
				continue
			}
			s, err := evaluate(fn, a.edge, b.edge)
			if err != nil {
				c.failures++
				if c.firstErr == nil {
					c.firstErr = fmt.Errorf("edges %d and %d: %w", i, j, err)
				}
				continue
			}
			c.scores[c.index(i, j)] = s
			if s > 0 && s >= cfg.CompatibilityThreshold {
				rev := a.edge.Chord().Dot(b.edge.Chord()) < 0
				c.neighbors[i] = append(c.neighbors[i], neighbor{idx: j, score: s, reversed: rev})
				c.neighbors[j] = append(c.neighbors[j], neighbor{idx: i, score: s, reversed: rev})
			}
		}
	}
	return c, nil
}

// evaluate calls fn and turns panics into errors.
func evaluate(fn CompatibilityFunc, a, b Edge) (score float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			score, err = 0, fmt.Errorf("compatibility function panicked: %v", r)
		}
	}()
	score, err = fn(a, b)
	if err != nil {
		return 0, err
	}
	return clampUnit(score), nil
}
