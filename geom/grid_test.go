package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdxCoords(t *testing.T) {
	table := []struct {
		origin, width [3]int
	}{
		{[3]int{0, 0, 0}, [3]int{4, 4, 4}},
		{[3]int{0, 0, 0}, [3]int{2, 3, 5}},
		{[3]int{10, -3, 7}, [3]int{3, 4, 2}},
	}

	for i, test := range table {
		g := NewGrid(test.origin, test.width)
		assert.Equal(t, test.width[0]*test.width[1]*test.width[2], g.Volume)

		seen := make([]bool, g.Volume)
		for z := g.Origin[2]; z < g.Origin[2]+g.Width[2]; z++ {
			for y := g.Origin[1]; y < g.Origin[1]+g.Width[1]; y++ {
				for x := g.Origin[0]; x < g.Origin[0]+g.Width[0]; x++ {
					idx, ok := g.IdxCheck(x, y, z)
					assert.True(t, ok, "%d) (%d %d %d)", i+1, x, y, z)
					assert.False(t, seen[idx], "%d) index %d repeated", i+1, idx)
					seen[idx] = true

					cx, cy, cz := g.Coords(idx)
					assert.Equal(t, [3]int{x, y, z}, [3]int{cx, cy, cz}, "%d)", i+1)
				}
			}
		}

		_, ok := g.IdxCheck(g.Origin[0]-1, g.Origin[1], g.Origin[2])
		assert.False(t, ok, "%d)", i+1)
		_, ok = g.IdxCheck(g.Origin[0], g.Origin[1]+g.Width[1], g.Origin[2])
		assert.False(t, ok, "%d)", i+1)
	}
}

func TestPeriodicIdx(t *testing.T) {
	g := NewCubeGrid(4)
	table := []struct {
		x, y, z, idx int
	}{
		{0, 0, 0, 0},
		{4, 0, 0, 0},
		{-1, 0, 0, 3},
		{0, -1, 0, 12},
		{0, 0, -1, 48},
		{5, 6, 7, g.Idx(1, 2, 3)},
		{-5, -6, -7, g.Idx(3, 2, 1)},
	}
	for i, test := range table {
		assert.Equal(t, test.idx, g.PeriodicIdx(test.x, test.y, test.z), "%d)", i+1)
	}
}

func TestWrap(t *testing.T) {
	table := []struct {
		i, n, out int
	}{
		{0, 8, 0}, {3, 8, 3}, {-1, 8, 7}, {-8, 8, 0}, {-9, 8, 7}, {9, 8, 1},
	}
	for i, test := range table {
		assert.Equal(t, test.out, Wrap(test.i, test.n), "%d)", i+1)
	}
}

func TestSplitRange(t *testing.T) {
	table := []struct {
		n, parts int
		bounds   []int
	}{
		{10, 1, []int{0, 10}},
		{10, 3, []int{0, 3, 6, 10}},
		{2, 4, []int{0, 0, 1, 1, 2}},
		{5, 0, []int{0, 5}},
	}
	for i, test := range table {
		assert.Equal(t, test.bounds, SplitRange(test.n, test.parts), "%d)", i+1)
	}
}
