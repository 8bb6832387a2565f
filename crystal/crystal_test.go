package crystal

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCubicDSpacing(t *testing.T) {
	s := &Structure{Lattice: Cubic, A: 4.2}
	for h := -3; h <= 3; h++ {
		for k := -3; k <= 3; k++ {
			for l := -3; l <= 3; l++ {
				if h == 0 && k == 0 && l == 0 {
					continue
				}
				n := math.Sqrt(float64(h*h + k*k + l*l))
				assert.InDelta(t, 4.2/n, s.DSpacing(h, k, l), 1e-12)
			}
		}
	}
	assert.True(t, math.IsInf(s.DSpacing(0, 0, 0), 1))
}

func TestNonCubicDSpacing(t *testing.T) {
	table := []struct {
		s       Structure
		h, k, l int
		d       float64
	}{
		{Structure{Lattice: Tetragonal, A: 4, C: 2}, 1, 0, 0, 4},
		{Structure{Lattice: Tetragonal, A: 4, C: 2}, 0, 0, 1, 2},
		{Structure{Lattice: Tetragonal, A: 4, C: 2}, 1, 1, 1, 1 / math.Sqrt(2.0/16+1.0/4)},
		{Structure{Lattice: Orthorhombic, A: 2, B: 3, C: 4}, 0, 1, 0, 3},
		{Structure{Lattice: Orthorhombic, A: 2, B: 3, C: 4}, 1, 1, 1, 1 / math.Sqrt(1.0/4+1.0/9+1.0/16)},
		{Structure{Lattice: FCC, A: 5.64}, 1, 1, 1, 5.64 / math.Sqrt(3)},
		{Structure{Lattice: BCC, A: 2, B: 7, C: 9}, 1, 1, 0, 2 / math.Sqrt(2)},
	}

	for i, test := range table {
		d := test.s.DSpacing(test.h, test.k, test.l)
		assert.InDelta(t, test.d, d, 1e-12, "%d) (%d %d %d)", i+1, test.h, test.k, test.l)
	}
}

func TestLengthDefaults(t *testing.T) {
	s := &Structure{Lattice: Orthorhombic, A: 3}
	a, b, c := s.Lengths()
	assert.Equal(t, [3]float64{3, 3, 3}, [3]float64{a, b, c})

	s = &Structure{Lattice: Tetragonal, A: 3, B: 8, C: 5}
	a, b, c = s.Lengths()
	assert.Equal(t, [3]float64{3, 3, 5}, [3]float64{a, b, c})
}

func TestValidate(t *testing.T) {
	table := []struct {
		s   Structure
		bad bool
	}{
		{Structure{Lattice: Cubic, A: 1}, false},
		{Structure{Lattice: Cubic, A: 0}, true},
		{Structure{Lattice: Cubic, A: -2}, true},
		{Structure{Lattice: Orthorhombic, A: 1, B: -1, C: 2}, true},
		{Structure{Lattice: Orthorhombic, A: 1, B: 2, C: -3}, true},
		{Structure{Lattice: Cubic, A: math.NaN()}, true},
		{Structure{Lattice: Cubic, A: math.Inf(1)}, true},
	}

	for i, test := range table {
		err := test.s.Validate()
		if test.bad {
			assert.True(t, errors.Is(err, ErrInvalidLattice), "%d) got %v", i+1, err)
		} else {
			assert.NoError(t, err, "%d)", i+1)
		}
	}

	s := &Structure{Lattice: Cubic, A: 1, Atoms: []Atom{{"", [3]float64{}, 1}}}
	err := s.Validate()
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidLattice))
}

func TestParseLattice(t *testing.T) {
	for l := Cubic; l < EndLattice; l++ {
		got, err := ParseLattice(" " + l.String() + " ")
		require.NoError(t, err)
		assert.Equal(t, l, got)
	}
	got, err := ParseLattice("fcc")
	require.NoError(t, err)
	assert.Equal(t, FCC, got)

	_, err = ParseLattice("hexagonal")
	assert.Error(t, err)
}

func TestCentring(t *testing.T) {
	table := []struct {
		s Structure
		c byte
	}{
		{Structure{Lattice: FCC}, 'F'},
		{Structure{Lattice: BCC, SpaceGroup: "Pm-3m"}, 'I'},
		{Structure{Lattice: Cubic, SpaceGroup: "Fd-3m"}, 'F'},
		{Structure{Lattice: Orthorhombic, SpaceGroup: "Cmcm"}, 'C'},
		{Structure{Lattice: Orthorhombic, SpaceGroup: "Pbca"}, 'P'},
		{Structure{Lattice: Tetragonal, SpaceGroup: "I4/mmm"}, 'I'},
		{Structure{Lattice: Cubic}, 'P'},
	}
	for i, test := range table {
		assert.Equal(t, string(test.c), string(test.s.Centring()), "%d)", i+1)
	}
}

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		s, err := Preset(name)
		require.NoError(t, err, name)
		assert.NoError(t, s.Validate(), name)
		assert.NotEmpty(t, s.Atoms, name)
	}

	_, err := Preset("unobtainium")
	assert.Error(t, err)

	assert.Len(t, NaCl().Atoms, 8)
	assert.Len(t, Silicon().Atoms, 8)
	assert.Len(t, Benzene().Atoms, 48)
}

func TestPresetsAreFresh(t *testing.T) {
	s1, _ := Preset("NaCl")
	s1.Atoms[0].Element = "K"
	s2, _ := Preset("NaCl")
	assert.Equal(t, "Na", s2.Atoms[0].Element)
}

func TestExpand(t *testing.T) {
	at := []Atom{{"C", [3]float64{0.1, 0.2, 0.3}, 6}}
	out := Expand(at, PbcaOps)
	require.Len(t, out, 8)
	for _, a := range out {
		for k := 0; k < 3; k++ {
			assert.True(t, a.Position[k] >= 0 && a.Position[k] < 1)
		}
	}

	// Special positions collapse onto fewer sites.
	origin := []Atom{{"C", [3]float64{0, 0, 0}, 6}}
	assert.Len(t, Expand(origin, PbcaOps), 4)
}
