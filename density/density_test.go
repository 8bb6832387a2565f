package density

import (
	"errors"
	"math"
	"testing"

	"github.com/phil-mansfield/xtal/crystal"
	"github.com/phil-mansfield/xtal/diffraction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestGridSize(t *testing.T) {
	table := []struct {
		res, n int
	}{
		{-3, 4}, {0, 4}, {1, 4}, {4, 4}, {5, 8}, {8, 8},
		{31, 32}, {32, 32}, {33, 64}, {256, 256}, {257, 512},
	}
	for i, test := range table {
		assert.Equal(t, test.n, GridSize(test.res), "%d) resolution %d", i+1, test.res)
	}
}

func TestDampingSigma(t *testing.T) {
	refs := []diffraction.Reflection{{H: 1, K: -4, L: 2}, {H: 3}}
	table := []struct {
		p     Params
		sigma float64
	}{
		{Params{Sigma: 1.5, MaxIndex: 5}, 1.5},
		{Params{Sigma: -1, MaxIndex: 5}, -1},
		{Params{MaxIndex: 5}, 4},
		{Params{}, 3.2},
	}
	for i, test := range table {
		assert.InDelta(t, test.sigma, test.p.DampingSigma(refs), 1e-12, "%d)", i+1)
	}
}

func TestCosineWave(t *testing.T) {
	refs := []diffraction.Reflection{
		{H: 1, F: complex(1, 0)},
		{H: -1, F: complex(1, 0)},
	}
	g, err := Reconstruct(refs, nil, Params{Resolution: 8, Sigma: -1, Workers: 2})
	require.NoError(t, err)
	require.Equal(t, 8, g.N)

	for x := 0; x < 8; x++ {
		want := (math.Cos(2*math.Pi*float64(x)/8) + 1) / 2
		for _, yz := range [][2]int{{0, 0}, {3, 5}, {7, 1}} {
			assert.InDelta(t, want, g.At(x, yz[0], yz[1]), 1e-12, "x = %d", x)
		}
	}
	assert.InDelta(t, -2, g.Min, 1e-12)
	assert.InDelta(t, 2, g.Max, 1e-12)
	assert.InDelta(t, 0.125, g.Spacing[0], 1e-12)
}

func TestPhaseConvention(t *testing.T) {
	// rho(x) = Re[F exp(-2 pi i h x)] with F = i is sin(2 pi x).
	refs := []diffraction.Reflection{{H: 1, F: complex(0, 1)}}
	g, err := Reconstruct(refs, nil, Params{Resolution: 8, Sigma: -1, Workers: 1})
	require.NoError(t, err)

	assert.InDelta(t, 1, g.At(2, 0, 0), 1e-12)
	assert.InDelta(t, 0, g.At(6, 0, 0), 1e-12)
	assert.InDelta(t, 0.5, g.At(0, 0, 0), 1e-12)
}

func TestSingleAtomPeak(t *testing.T) {
	s := &crystal.Structure{
		Lattice: crystal.Cubic, A: 4,
		Atoms: []crystal.Atom{{"Cu", [3]float64{0.25, 0.125, 0.375}, 29}},
	}
	p := diffraction.DefaultParams()
	p.MaxIndex = 2
	refs, err := diffraction.Generate(s, p)
	require.NoError(t, err)

	g, err := Reconstruct(refs, s, Params{Resolution: 8, MaxIndex: 2})
	require.NoError(t, err)

	x, y, z := g.grid().Coords(floats.MaxIdx(g.Values))
	assert.Equal(t, [3]int{2, 1, 3}, [3]int{x, y, z})
	assert.InDelta(t, 1.0, g.Values[g.Idx(2, 1, 3)], 1e-12)
	assert.Contains(t, g.LocalMaxima(), [3]int{2, 1, 3})

	pos := g.Position(2, 1, 3)
	assert.InDeltaSlice(t, []float64{1, 0.5, 1.5}, pos[:], 1e-12)
}

func periodicDist(a, b, n int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	if n-d < d {
		d = n - d
	}
	return d
}

func TestMaximaNearAtoms(t *testing.T) {
	s := crystal.NaCl()
	p := diffraction.DefaultParams()
	p.MaxIndex = 3
	refs, err := diffraction.Generate(s, p)
	require.NoError(t, err)

	g, err := Reconstruct(refs, s, Params{Resolution: 8, MaxIndex: 3})
	require.NoError(t, err)
	maxima := g.LocalMaxima()
	require.NotEmpty(t, maxima)

	for _, at := range s.Atoms {
		found := false
		for _, m := range maxima {
			near := true
			for k := 0; k < 3; k++ {
				site := int(math.Round(at.Position[k] * float64(g.N)))
				if periodicDist(m[k], site%g.N, g.N) > 1 {
					near = false
				}
			}
			found = found || near
		}
		assert.True(t, found, "no maximum near %s at %v", at.Element, at.Position)
	}
}

func TestDeterminism(t *testing.T) {
	s := crystal.Benzene()
	p := diffraction.DefaultParams()
	p.MaxIndex = 3
	refs, err := diffraction.Generate(s, p)
	require.NoError(t, err)

	g1, err := Reconstruct(refs, s, Params{Resolution: 16, Workers: 1})
	require.NoError(t, err)
	g2, err := Reconstruct(refs, s, Params{Resolution: 16, Workers: 5})
	require.NoError(t, err)
	g3, err := Reconstruct(refs, s, Params{Resolution: 16, Workers: 5})
	require.NoError(t, err)

	assert.Equal(t, g1.Values, g2.Values)
	assert.Equal(t, g2.Values, g3.Values)
	assert.Equal(t, g1.Min, g3.Min)
	assert.Equal(t, g1.Max, g3.Max)
}

func TestNormalization(t *testing.T) {
	s := crystal.NaCl()
	refs, err := diffraction.Generate(s, diffraction.DefaultParams())
	require.NoError(t, err)

	g, err := Reconstruct(refs, s, Params{Resolution: 10})
	require.NoError(t, err)
	assert.Equal(t, 16, g.N)
	assert.Len(t, g.Values, 16*16*16)
	assert.True(t, g.Normalized)
	assert.Equal(t, 0.0, floats.Min(g.Values))
	assert.InDelta(t, 1.0, floats.Max(g.Values), 1e-12)
	assert.True(t, g.Min < g.Max)
	assert.InDelta(t, g.Max, g.Denormalize(1), 1e-9)
	assert.InDelta(t, g.Min, g.Denormalize(0), 1e-9)

	// Reconstruction never modifies its input.
	again, err := diffraction.Generate(s, diffraction.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, again, refs)
}

func TestEmptyReflections(t *testing.T) {
	g, err := Reconstruct(nil, nil, Params{Resolution: 4})
	require.NoError(t, err)
	for _, v := range g.Values {
		assert.Equal(t, 0.0, v)
	}
	assert.Empty(t, g.LocalMaxima())
}

func TestErrors(t *testing.T) {
	_, err := Reconstruct(nil, nil, Params{Resolution: 17, MaxResolution: 16})
	assert.True(t, errors.Is(err, ErrResolutionTooLarge))
	_, err = Reconstruct(nil, nil, Params{Resolution: 16, MaxResolution: 16})
	assert.NoError(t, err)
	_, err = Reconstruct(nil, nil, Params{Resolution: 300})
	assert.True(t, errors.Is(err, ErrResolutionTooLarge))

	bad := &crystal.Structure{Lattice: crystal.Cubic, A: -1}
	_, err = Reconstruct(nil, bad, Params{Resolution: 4})
	assert.True(t, errors.Is(err, crystal.ErrInvalidLattice))
}

func TestAliasedIndices(t *testing.T) {
	table := []struct {
		h, res int
		ok     bool
	}{
		{1, 4, true},
		{2, 4, false},
		{-3, 4, false},
		{3, 8, true},
		{4, 8, false},
		{4, 5, false},
		{4, 9, true},
	}

	for i, test := range table {
		refs := []diffraction.Reflection{
			{H: 1, F: complex(1, 0)},
			{K: test.h, F: complex(1, 0)},
		}
		g, err := Reconstruct(refs, nil, Params{Resolution: test.res, Sigma: -1})
		if test.ok {
			require.NoError(t, err, "%d)", i+1)
			assert.Equal(t, GridSize(test.res), g.N, "%d)", i+1)
		} else {
			assert.ErrorIs(t, err, ErrResolutionTooSmall, "%d)", i+1)
			assert.Nil(t, g, "%d)", i+1)
		}
	}
}

func rampGrid(n int) *VolumeGrid {
	g := NewVolumeGrid(n, [3]float64{1, 1, 1})
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				g.Values[g.Idx(x, y, z)] = float64(x + 10*y + 100*z)
			}
		}
	}
	return g
}

func TestSample(t *testing.T) {
	g := rampGrid(4)

	assert.InDelta(t, g.At(1, 2, 3), g.Sample(0.25, 0.5, 0.75), 1e-12)
	assert.InDelta(t, g.At(1, 2, 3), g.Sample(1.25, -0.5, 0.75), 1e-12)
	assert.InDelta(t, 1.5+20+100, g.Sample(1.5/4, 0.5, 0.25), 1e-12)
	assert.InDelta(t, 1+25+100, g.Sample(0.25, 2.5/4, 0.25), 1e-12)
}

func TestSlice(t *testing.T) {
	g := rampGrid(3)

	table := []struct {
		axis, index int
		first, next float64
	}{
		{0, 1, 1, 11},
		{1, 2, 20, 21},
		{2, 0, 0, 1},
	}
	for i, test := range table {
		sl, err := g.Slice(test.axis, test.index)
		require.NoError(t, err, "%d)", i+1)
		require.Len(t, sl, 9, "%d)", i+1)
		assert.Equal(t, test.first, sl[0], "%d)", i+1)
		assert.Equal(t, test.next, sl[1], "%d)", i+1)
	}

	_, err := g.Slice(3, 0)
	assert.Error(t, err)
	_, err = g.Slice(0, 3)
	assert.Error(t, err)
}

func TestSigmaLevel(t *testing.T) {
	g := NewVolumeGrid(4, [3]float64{1, 1, 1})
	for i := range g.Values {
		g.Values[i] = float64(i % 2)
	}
	mean, std := g.MeanStdDev()
	assert.InDelta(t, 0.5, mean, 1e-12)
	assert.True(t, std > 0)

	assert.InDelta(t, 0.5, g.SigmaLevel(0), 1e-12)
	assert.InDelta(t, 1, g.SigmaLevel(10), 1e-12)
	assert.InDelta(t, 0, g.SigmaLevel(-10), 1e-12)
}

func BenchmarkReconstruct32(b *testing.B) {
	s := crystal.Benzene()
	p := diffraction.DefaultParams()
	refs, _ := diffraction.Generate(s, p)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Reconstruct(refs, s, Params{Resolution: 32})
	}
}
