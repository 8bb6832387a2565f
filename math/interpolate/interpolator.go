/*package interpolate provides one-dimensional interpolators over tabulated,
strictly increasing control points. Every interpolator clamps to the first
and last control value outside of the tabulated range.
*/
package interpolate

import (
	"fmt"
	"strings"
)

type Interpolator interface {
	Eval(x float64) float64
	EvalAll(xs []float64, out ...[]float64) []float64
}

var (
	_ Interpolator = &Spline{}
	_ Interpolator = &Linear{}
)

// Policy selects an Interpolator implementation.
type Policy int

const (
	LinearPolicy Policy = iota
	SplinePolicy
	EndPolicy
)

var policyNames = [EndPolicy]string{"Linear", "Spline"}

func (p Policy) String() string {
	if p < 0 || p >= EndPolicy {
		return fmt.Sprintf("Policy(%d)", int(p))
	}
	return policyNames[p]
}

// ParsePolicy converts a case-insensitive policy name into a Policy. The
// empty string is LinearPolicy.
func ParsePolicy(name string) (Policy, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return LinearPolicy, nil
	}
	for p := LinearPolicy; p < EndPolicy; p++ {
		if strings.EqualFold(p.String(), name) {
			return p, nil
		}
	}
	return EndPolicy, fmt.Errorf(
		"Interpolation '%s' not recognized. Must be one of [%s].",
		name, strings.Join(policyNames[:], " | "),
	)
}

// New creates the interpolator selected by p. xs must be strictly increasing
// and contain at least two points.
func New(p Policy, xs, vals []float64) Interpolator {
	switch p {
	case LinearPolicy:
		return NewLinear(xs, vals)
	case SplinePolicy:
		return NewSpline(xs, vals)
	}
	panic(fmt.Sprintf("Unknown interpolation policy %d.", int(p)))
}

// searcher finds the interval containing a point in a sorted table.
type searcher struct {
	xs []float64
	// Estimated spacing, used to guess an index before falling back to
	// binary search.
	dx float64
}

func (s *searcher) init(xs []float64) {
	if len(xs) < 2 {
		panic(fmt.Sprintf("Table has length %d, must be at least 2.", len(xs)))
	}
	for i := 0; i < len(xs)-1; i++ {
		if !(xs[i+1] > xs[i]) {
			panic(fmt.Sprintf(
				"Table not strictly increasing: xs[%d] = %g, xs[%d] = %g.",
				i, xs[i], i+1, xs[i+1],
			))
		}
	}
	s.xs = xs
	s.dx = (xs[len(xs)-1] - xs[0]) / float64(len(xs)-1)
}

// search returns the index of the interval [xs[i], xs[i+1]] containing x.
// x must be within the table.
func (s *searcher) search(x float64) int {
	xs := s.xs
	guess := int((x - xs[0]) / s.dx)
	if guess >= 0 && guess < len(xs)-1 && xs[guess] <= x && x <= xs[guess+1] {
		return guess
	}

	lo, hi := 0, len(xs)-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if x >= xs[mid] {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// outside reports whether x is outside of the table and, if so, the index of
// the control point it clamps to.
func (s *searcher) outside(x float64) (int, bool) {
	if x <= s.xs[0] {
		return 0, true
	} else if x >= s.xs[len(s.xs)-1] {
		return len(s.xs) - 1, true
	}
	return -1, false
}

func evalAll(intr Interpolator, xs []float64, out [][]float64) []float64 {
	if len(out) == 0 {
		out = [][]float64{make([]float64, len(xs))}
	}
	for i, x := range xs {
		out[0][i] = intr.Eval(x)
	}
	return out[0]
}
