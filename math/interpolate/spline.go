package interpolate

import (
	"fmt"
)

type splineCoeff struct {
	a, b, c, d float64
}

// Spline is a local cubic spline. Each interval only depends on the four
// surrounding control points: the tangent at point i is the slope between
// points i-1 and i+1 (one-sided at the ends), and the interval between i and
// i+1 is the cubic Hermite polynomial matching both values and tangents.
type Spline struct {
	xs     searcher
	ys     []float64
	coeffs []splineCoeff
}

// NewSpline creates a spline based off a table of strictly increasing x
// values and their y values.
//
// xs and ys must not be modified throughout the lifetime of the Spline.
func NewSpline(xs, ys []float64) *Spline {
	if len(xs) != len(ys) {
		panic(fmt.Sprintf(
			"Table given to NewSpline() has len(xs) = %d but len(ys) = %d.",
			len(xs), len(ys),
		))
	}

	sp := &Spline{}
	sp.xs.init(xs)
	sp.ys = ys
	sp.coeffs = make([]splineCoeff, len(xs)-1)
	sp.calcCoeffs()
	return sp
}

func (sp *Spline) tangent(i int) float64 {
	xs, ys := sp.xs.xs, sp.ys
	lo, hi := i-1, i+1
	if lo < 0 {
		lo = 0
	}
	if hi > len(xs)-1 {
		hi = len(xs) - 1
	}
	return (ys[hi] - ys[lo]) / (xs[hi] - xs[lo])
}

func (sp *Spline) calcCoeffs() {
	xs, ys := sp.xs.xs, sp.ys
	for i := range sp.coeffs {
		h := xs[i+1] - xs[i]
		slope := (ys[i+1] - ys[i]) / h
		m0, m1 := sp.tangent(i), sp.tangent(i+1)

		sp.coeffs[i] = splineCoeff{
			a: (m0 + m1 - 2*slope) / (h * h),
			b: (3*slope - 2*m0 - m1) / h,
			c: m0,
			d: ys[i],
		}
	}
}

// Eval computes the value of the spline at the given point. Points outside
// the table return the nearest end value.
func (sp *Spline) Eval(x float64) float64 {
	if i, ok := sp.xs.outside(x); ok {
		return sp.ys[i]
	}

	i := sp.xs.search(x)
	dx := x - sp.xs.xs[i]
	a, b, c, d := sp.coeffs[i].a, sp.coeffs[i].b, sp.coeffs[i].c, sp.coeffs[i].d
	return a*dx*dx*dx + b*dx*dx + c*dx + d
}

// Diff computes the derivative of the spline at the given point to the
// specified order. The clamped regions outside the table have a derivative
// of zero.
func (sp *Spline) Diff(x float64, order int) float64 {
	if order == 0 {
		return sp.Eval(x)
	} else if _, ok := sp.xs.outside(x); ok {
		return 0
	}

	i := sp.xs.search(x)
	dx := x - sp.xs.xs[i]
	a, b, c := sp.coeffs[i].a, sp.coeffs[i].b, sp.coeffs[i].c
	switch order {
	case 1:
		return 3*a*dx*dx + 2*b*dx + c
	case 2:
		return 6*a*dx + 2*b
	case 3:
		return 6 * a
	default:
		return 0
	}
}

// EvalAll evaluates the spline at all the given x values. If an output
// array is given, the output is written to that array.
func (sp *Spline) EvalAll(xs []float64, out ...[]float64) []float64 {
	return evalAll(sp, xs, out)
}
