/*package geom contains index arithmetic for flat slices which are treated as
3D grids, x varying fastest.
*/
package geom

// Grid provides an interface for reasoning over a 1D slice as if it were a
// 3D grid.
type Grid struct {
	CellBounds
	Length, Area, Volume int
	uBounds              [3]int
}

// CellBounds represents a bounding box aligned to grid cells.
type CellBounds struct {
	Origin, Width [3]int
}

// NewGrid returns a new Grid instance.
func NewGrid(origin [3]int, width [3]int) *Grid {
	g := &Grid{}
	g.Init(origin, width)
	return g
}

// NewCubeGrid returns an n x n x n Grid with its origin at zero.
func NewCubeGrid(n int) *Grid {
	return NewGrid([3]int{0, 0, 0}, [3]int{n, n, n})
}

// Init initializes a Grid instance.
func (g *Grid) Init(origin [3]int, width [3]int) {
	g.Origin = origin
	g.Width = width

	g.Length = width[0]
	g.Area = width[0] * width[1]
	g.Volume = width[0] * width[1] * width[2]

	for i := 0; i < 3; i++ {
		g.uBounds[i] = g.Origin[i] + g.Width[i]
	}
}

// Idx returns the grid index corresponding to a set of coordinates.
func (g *Grid) Idx(x, y, z int) int {
	return ((x - g.Origin[0]) + (y-g.Origin[1])*g.Length +
		(z-g.Origin[2])*g.Area)
}

// IdxCheck returns an index and true if the given coordinate are valid and
// false otherwise.
func (g *Grid) IdxCheck(x, y, z int) (idx int, ok bool) {
	if !g.BoundsCheck(x, y, z) {
		return -1, false
	}

	return g.Idx(x, y, z), true
}

// PeriodicIdx returns the index of a coordinate after wrapping it back into
// the grid along every axis.
func (g *Grid) PeriodicIdx(x, y, z int) int {
	return g.Idx(
		g.Origin[0]+pMod(x-g.Origin[0], g.Width[0]),
		g.Origin[1]+pMod(y-g.Origin[1], g.Width[1]),
		g.Origin[2]+pMod(z-g.Origin[2], g.Width[2]),
	)
}

// BoundsCheck returns true if the given coordinates are within the Grid and
// false otherwise.
func (g *Grid) BoundsCheck(x, y, z int) bool {
	return (g.Origin[0] <= x && g.Origin[1] <= y && g.Origin[2] <= z) &&
		(x < g.uBounds[0] && y < g.uBounds[1] &&
			z < g.uBounds[2])
}

// Coords returns the x, y, z coordinates of a point from its grid index.
func (g *Grid) Coords(idx int) (x, y, z int) {
	x = idx % g.Length
	y = (idx % g.Area) / g.Length
	z = idx / g.Area
	return x + g.Origin[0], y + g.Origin[1], z + g.Origin[2]
}

// Wrap maps a signed frequency index into [0, n), the storage order used by
// discrete Fourier transforms.
func Wrap(i, n int) int { return pMod(i, n) }

// pMod computes the positive modulo x % y.
func pMod(x, y int) int {
	m := x % y
	if m < 0 {
		m += y
	}
	return m
}

// SplitRange divides [0, n) into parts contiguous ranges whose lengths
// differ by at most one. The i-th range is [bounds[i], bounds[i+1]).
func SplitRange(n, parts int) []int {
	if parts < 1 {
		parts = 1
	}
	bounds := make([]int, parts+1)
	for i := 0; i <= parts; i++ {
		bounds[i] = i * n / parts
	}
	return bounds
}
