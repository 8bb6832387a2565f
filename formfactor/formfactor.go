/*package formfactor computes atomic X-ray scattering factors as a function
of s = sin(theta)/lambda.

Elements use, in order of preference: a custom (s, f) curve, the tabulated
Cromer-Mann coefficients, or a default curve shaped like carbon and scaled
to the atomic number. A missing element is never an error.
*/
package formfactor

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/phil-mansfield/xtal/math/interpolate"
)

// Point is a single control point of a Curve.
type Point struct {
	S, F float64
}

// Curve is a tabulated form factor with S strictly increasing.
type Curve []Point

// Validate returns an error if the curve cannot be interpolated.
func (c Curve) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("Form factor curve has no points.")
	}
	for i := range c {
		if math.IsNaN(c[i].S) || math.IsNaN(c[i].F) {
			return fmt.Errorf("Form factor curve point %d is NaN.", i)
		}
		if i > 0 && !(c[i].S > c[i-1].S) {
			return fmt.Errorf(
				"Form factor curve not ascending in s: s[%d] = %g, s[%d] = %g.",
				i-1, c[i-1].S, i, c[i].S,
			)
		}
	}
	return nil
}

// Columns splits the curve into its s and f columns.
func (c Curve) Columns() (ss, fs []float64) {
	ss, fs = make([]float64, len(c)), make([]float64, len(c))
	for i := range c {
		ss[i], fs[i] = c[i].S, c[i].F
	}
	return ss, fs
}

// curveModel evaluates a Curve with an interpolation policy.
type curveModel struct {
	intr     interpolate.Interpolator
	constant float64
	policy   interpolate.Policy
}

func newCurveModel(c Curve, p interpolate.Policy) *curveModel {
	if len(c) == 1 {
		return &curveModel{constant: c[0].F, policy: p}
	}
	ss, fs := c.Columns()
	return &curveModel{intr: interpolate.New(p, ss, fs), policy: p}
}

func (m *curveModel) eval(s float64) float64 {
	if m.intr == nil {
		return m.constant
	}
	f := m.intr.Eval(s)
	// Splines can overshoot below zero between steep control points.
	if m.policy == interpolate.SplinePolicy && f < 0 {
		return 0
	}
	return f
}

// Table evaluates form factors for any element. The zero value uses only the
// built-in coefficients.
type Table struct {
	custom map[string]*curveModel
	policy interpolate.Policy
}

// NewTable creates a Table using the given custom curves, evaluated with
// policy p. Curves are keyed by element symbol.
func NewTable(curves map[string]Curve, p interpolate.Policy) (*Table, error) {
	if p < 0 || p >= interpolate.EndPolicy {
		return nil, fmt.Errorf("Unknown interpolation policy %d.", int(p))
	}

	tab := &Table{custom: map[string]*curveModel{}, policy: p}
	for el, c := range curves {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("Element '%s': %s", el, err.Error())
		}
		tab.custom[Normalize(el)] = newCurveModel(c, p)
	}
	return tab, nil
}

// Policy returns the interpolation policy used for custom curves.
func (tab *Table) Policy() interpolate.Policy { return tab.policy }

// CustomElements returns the sorted symbols with custom curves.
func (tab *Table) CustomElements() []string {
	out := []string{}
	if tab == nil {
		return out
	}
	for el := range tab.custom {
		out = append(out, el)
	}
	sort.Strings(out)
	return out
}

// Source describes where an element's form factor comes from.
type Source int

const (
	FromCurve Source = iota
	FromCoefficients
	FromDefault
)

// Source reports which model F will use for an element.
func (tab *Table) Source(element string) Source {
	el := Normalize(element)
	if tab != nil {
		if _, ok := tab.custom[el]; ok {
			return FromCurve
		}
	}
	if _, ok := coeffTable[el]; ok {
		return FromCoefficients
	}
	return FromDefault
}

// F returns the scattering factor of an element with atomic number z at
// s = sin(theta)/lambda.
func (tab *Table) F(element string, z int, s float64) float64 {
	el := Normalize(element)
	if tab != nil {
		if m, ok := tab.custom[el]; ok {
			return m.eval(s)
		}
	}
	if c, ok := coeffTable[el]; ok {
		return c.Eval(s)
	}
	return Default(z, s)
}

// Default is the fallback curve: carbon's shape scaled so that f(0) = z.
// Non-positive z uses carbon itself.
func Default(z int, s float64) float64 {
	c := coeffTable["C"]
	if z <= 0 {
		z = defaultZ
	}
	return c.Eval(s) * float64(z) / c.Eval(0)
}

// Normalize converts an element symbol like " na+ " or "CL1-" to its
// canonical capitalization ("Na", "Cl"), dropping charges and digits.
func Normalize(element string) string {
	letters := []rune{}
	for _, r := range strings.TrimSpace(element) {
		if !unicode.IsLetter(r) {
			break
		}
		letters = append(letters, r)
	}
	if len(letters) == 0 {
		return ""
	}
	out := string(unicode.ToUpper(letters[0]))
	if len(letters) > 1 {
		out += strings.ToLower(string(letters[1:]))
	}
	return out
}
