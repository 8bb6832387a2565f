package interpolate

import (
	"fmt"
)

// Linear is a linear interpolator.
type Linear struct {
	xs   searcher
	vals []float64
}

// NewLinear creates a linear interpolator for a sequence of strictly
// increasing points, xs, which take on the values given by vals.
//
// Lookups will occur in O(log |xs|), or O(1) for uniformly spaced tables.
func NewLinear(xs, vals []float64) *Linear {
	if len(xs) != len(vals) {
		panic(fmt.Sprintf(
			"len(xs) = %d, but len(vals) = %d.", len(xs), len(vals),
		))
	}
	lin := &Linear{}
	lin.xs.init(xs)
	lin.vals = vals
	return lin
}

// Eval returns the interpolated value at x. Points outside the table return
// the nearest end value.
func (lin *Linear) Eval(x float64) float64 {
	if i, ok := lin.xs.outside(x); ok {
		return lin.vals[i]
	}

	i1 := lin.xs.search(x)
	i2 := i1 + 1
	x1, x2 := lin.xs.xs[i1], lin.xs.xs[i2]
	v1, v2 := lin.vals[i1], lin.vals[i2]

	return ((v2-v1)/(x2-x1))*(x-x1) + v1
}

// EvalAll evaluates the interpolator at all the given x values. If an output
// array is given, the output is written to that array (the array is still
// returned as a convenience).
//
// If more than one output array is provided, only the first is used.
func (lin *Linear) EvalAll(xs []float64, out ...[]float64) []float64 {
	return evalAll(lin, xs, out)
}
