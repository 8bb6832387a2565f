package isosurface

import (
	"math"
	"testing"

	"github.com/phil-mansfield/xtal/crystal"
	"github.com/phil-mansfield/xtal/density"
	"github.com/phil-mansfield/xtal/diffraction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func gaussianGrid(n int, sigma float64, center [3]float64) *density.VolumeGrid {
	g := density.NewVolumeGrid(n, [3]float64{float64(n), float64(n), float64(n)})
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				dx := float64(x) - center[0]
				dy := float64(y) - center[1]
				dz := float64(z) - center[2]
				r2 := dx*dx + dy*dy + dz*dz
				g.Values[g.Idx(x, y, z)] = math.Exp(-r2 / (2 * sigma * sigma))
			}
		}
	}
	return g
}

func TestTables(t *testing.T) {
	assert.Equal(t, uint16(0), edgeTable[0])
	assert.Equal(t, uint16(0), edgeTable[255])

	for cfg := 0; cfg < 256; cfg++ {
		crossing := uint16(0)
		for e, c := range edgeCorners {
			a, b := cfg>>uint(c[0])&1, cfg>>uint(c[1])&1
			if a != b {
				crossing |= 1 << uint(e)
			}
		}
		assert.Equal(t, crossing, edgeTable[cfg], "configuration %d", cfg)

		used := uint16(0)
		n := 0
		for n < 16 && triTable[cfg][n] != -1 {
			used |= 1 << uint(triTable[cfg][n])
			n++
		}
		require.True(t, n < 16, "configuration %d not terminated", cfg)
		assert.Equal(t, 0, n%3, "configuration %d", cfg)
		assert.True(t, n <= 15, "configuration %d", cfg)
		assert.Equal(t, edgeTable[cfg], used, "configuration %d", cfg)
	}
}

func TestEdgeCornersAreOrdered(t *testing.T) {
	for e, c := range edgeCorners {
		a, b := cornerOffsets[c[0]], cornerOffsets[c[1]]
		diff := 0
		for k := 0; k < 3; k++ {
			diff += b[k] - a[k]
			assert.True(t, b[k] >= a[k], "edge %d", e)
		}
		assert.Equal(t, 1, diff, "edge %d", e)
	}
}

func TestAllBelow(t *testing.T) {
	g := gaussianGrid(8, 1, [3]float64{3.5, 3.5, 3.5})
	m := Extract(g, 2)
	assert.True(t, m.Empty())
	assert.Equal(t, 0, m.Triangles())

	lo, hi := m.Bounds()
	assert.Equal(t, r3.Vec{}, lo)
	assert.Equal(t, r3.Vec{}, hi)
}

func TestClosedSurface(t *testing.T) {
	table := []struct {
		center [3]float64
	}{
		{[3]float64{7.5, 7.5, 7.5}},
		{[3]float64{7.3, 8.1, 6.6}},
	}

	for i, test := range table {
		g := gaussianGrid(16, 2, test.center)
		m := ExtractWorkers(g, 0.5, 3)
		require.False(t, m.Empty(), "%d)", i+1)
		require.Equal(t, len(m.Positions), len(m.Normals), "%d)", i+1)
		require.Equal(t, 0, len(m.Positions)%3, "%d)", i+1)

		// Every directed edge is matched by exactly one reversed edge.
		type edge struct{ a, b r3.Vec }
		count := map[edge]int{}
		for j := 0; j < m.Triangles(); j++ {
			tri := m.Triangle(j)
			for k := 0; k < 3; k++ {
				count[edge{tri[k], tri[(k+1)%3]}]++
			}
		}
		for e, c := range count {
			assert.Equal(t, 1, c, "%d) repeated edge", i+1)
			assert.Equal(t, 1, count[edge{e.b, e.a}], "%d) open edge", i+1)
		}

		// Normals are unit length and point away from the peak.
		c := r3.Vec{X: test.center[0], Y: test.center[1], Z: test.center[2]}
		for j := 0; j < m.Triangles(); j++ {
			tri := m.Triangle(j)
			n := m.Normals[3*j]
			assert.InDelta(t, 1, r3.Norm(n), 1e-9, "%d)", i+1)
			centroid := r3.Scale(1.0/3, r3.Add(tri[0], r3.Add(tri[1], tri[2])))
			assert.True(t, r3.Dot(n, r3.Sub(centroid, c)) > 0, "%d) inward normal", i+1)
		}

		// A sphere of radius sigma*sqrt(2 ln 2).
		r := 2 * math.Sqrt(2*math.Ln2)
		assert.InEpsilon(t, 4*math.Pi*r*r*r/3, m.Volume(), 0.15, "%d)", i+1)

		lo, hi := m.Bounds()
		for k, pair := range [][2]float64{{lo.X, hi.X}, {lo.Y, hi.Y}, {lo.Z, hi.Z}} {
			assert.True(t, pair[0] < test.center[k] && test.center[k] < pair[1], "%d)", i+1)
			assert.InDelta(t, 2*r, pair[1]-pair[0], 0.5, "%d)", i+1)
		}
	}
}

func TestWorkersAgree(t *testing.T) {
	g := gaussianGrid(16, 2.5, [3]float64{6.2, 8.7, 7.1})
	serial := ExtractWorkers(g, 0.3, 1)
	for _, w := range []int{2, 3, 7, 64} {
		parallel := ExtractWorkers(g, 0.3, w)
		assert.Equal(t, serial.Positions, parallel.Positions, "workers = %d", w)
		assert.Equal(t, serial.Normals, parallel.Normals, "workers = %d", w)
	}
}

func TestSnapping(t *testing.T) {
	g := density.NewVolumeGrid(4, [3]float64{4, 4, 4})
	g.Values[g.Idx(1, 1, 1)] = 1
	g.Values[g.Idx(2, 1, 1)] = 0.5

	m := Extract(g, 0.5)
	require.False(t, m.Empty())
	for _, p := range m.Positions {
		assert.False(t, math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z))
	}
	for _, n := range m.Normals {
		norm := r3.Norm(n)
		assert.False(t, math.IsNaN(norm))
		assert.True(t, norm == 0 || math.Abs(norm-1) < 1e-9)
	}
}

func TestReconstructedSurface(t *testing.T) {
	s := crystal.NaCl()
	p := diffraction.DefaultParams()
	p.MaxIndex = 4
	refs, err := diffraction.Generate(s, p)
	require.NoError(t, err)
	g, err := density.Reconstruct(refs, s, density.Params{Resolution: 16})
	require.NoError(t, err)

	m := Extract(g, 0.5)
	require.False(t, m.Empty())
	assert.True(t, m.Area() > 0)

	lo, hi := m.Bounds()
	a, _, _ := s.Lengths()
	for _, v := range []float64{lo.X, lo.Y, lo.Z} {
		assert.True(t, v >= 0)
	}
	for _, v := range []float64{hi.X, hi.Y, hi.Z} {
		assert.True(t, v <= a*float64(g.N-1)/float64(g.N)+1e-9)
	}
}

func BenchmarkExtract32(b *testing.B) {
	g := gaussianGrid(32, 4, [3]float64{15.5, 15.5, 15.5})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Extract(g, 0.5)
	}
}
