package formfactor

import (
	"math"
	"testing"

	"github.com/phil-mansfield/xtal/math/interpolate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoefficientsAtZero(t *testing.T) {
	table := []struct {
		el string
		f0 float64
	}{
		{"Cu", 28.9859},
		{"Na", 10.9924},
		{"H", 0.999872},
		{"C", 5.9992},
	}

	var tab *Table
	for i, test := range table {
		assert.InDelta(t, test.f0, tab.F(test.el, 0, 0), 1e-4, "%d) %s", i+1, test.el)
	}
}

func TestCoefficientsDecrease(t *testing.T) {
	for el := range coeffTable {
		c := coeffTable[el]
		prev := c.Eval(0)
		for s := 0.05; s < 1.5; s += 0.05 {
			f := c.Eval(s)
			assert.True(t, f < prev, "%s: f(%g) = %g not below %g", el, s, f, prev)
			prev = f
		}
	}
}

func TestDefaultCurve(t *testing.T) {
	assert.InDelta(t, 55, Default(55, 0), 1e-12)
	assert.InDelta(t, 6, Default(6, 0), 1e-12)

	c := coeffTable["C"]
	for _, s := range []float64{0, 0.1, 0.4, 1} {
		assert.InDelta(t, c.Eval(s)*6/c.Eval(0), Default(0, s), 1e-12)
		assert.InDelta(t, Default(0, s)*2, Default(12, s), 1e-12)
	}

	tab, err := NewTable(nil, interpolate.LinearPolicy)
	require.NoError(t, err)
	assert.Equal(t, FromDefault, tab.Source("Cs"))
	assert.InDelta(t, Default(55, 0.3), tab.F("Cs", 55, 0.3), 1e-12)
}

func TestCustomCurves(t *testing.T) {
	curve := Curve{{0, 10}, {0.5, 6}, {1, 2}}
	tab, err := NewTable(map[string]Curve{"na": curve}, interpolate.LinearPolicy)
	require.NoError(t, err)

	assert.Equal(t, FromCurve, tab.Source("Na"))
	assert.Equal(t, FromCoefficients, tab.Source("Cl"))
	assert.Equal(t, []string{"Na"}, tab.CustomElements())

	table := []struct {
		s, f float64
	}{
		{0, 10}, {0.25, 8}, {0.5, 6}, {0.75, 4}, {1, 2},
		{-1, 10}, {3, 2},
	}
	for i, test := range table {
		assert.InDelta(t, test.f, tab.F("Na", 11, test.s), 1e-12, "%d) s = %g", i+1, test.s)
	}
}

func TestSplineCurveNeverNegative(t *testing.T) {
	curve := Curve{{0, 10}, {0.1, 0.01}, {0.2, 0}, {0.3, 0}, {0.4, 5}}
	tab, err := NewTable(map[string]Curve{"X": curve}, interpolate.SplinePolicy)
	require.NoError(t, err)

	for s := 0.0; s <= 0.5; s += 0.01 {
		f := tab.F("X", 0, s)
		assert.False(t, math.IsNaN(f))
		assert.True(t, f >= 0, "f(%g) = %g", s, f)
	}
	assert.InDelta(t, 10, tab.F("X", 0, 0), 1e-12)
	assert.InDelta(t, 5, tab.F("X", 0, 1), 1e-12)
}

func TestSinglePointCurve(t *testing.T) {
	tab, err := NewTable(map[string]Curve{"X": {{0.2, 3}}}, interpolate.SplinePolicy)
	require.NoError(t, err)
	assert.Equal(t, 3.0, tab.F("X", 0, 0))
	assert.Equal(t, 3.0, tab.F("X", 0, 2))
}

func TestBadCurves(t *testing.T) {
	table := []Curve{
		{},
		{{0, 1}, {0, 2}},
		{{0.5, 1}, {0.1, 2}},
		{{0, math.NaN()}, {1, 2}},
	}
	for i, c := range table {
		assert.Error(t, c.Validate(), "%d)", i+1)
		_, err := NewTable(map[string]Curve{"X": c}, interpolate.LinearPolicy)
		assert.Error(t, err, "%d)", i+1)
	}

	_, err := NewTable(nil, interpolate.EndPolicy)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	table := []struct {
		in, out string
	}{
		{"Na", "Na"}, {"NA", "Na"}, {" cl ", "Cl"}, {"Fe3+", "Fe"},
		{"O2-", "O"}, {"h", "H"}, {"", ""}, {"1", ""},
	}
	for i, test := range table {
		assert.Equal(t, test.out, Normalize(test.in), "%d)", i+1)
	}
}

func BenchmarkCoefficients(b *testing.B) {
	c := coeffTable["Cu"]
	for i := 0; i < b.N; i++ {
		c.Eval(float64(i%100) / 100)
	}
}
