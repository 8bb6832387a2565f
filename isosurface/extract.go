/*package isosurface extracts threshold surfaces from density grids with
marching cubes.

Every cell of eight neighboring samples is classified by which corners lie
above the threshold, and the triangles for that configuration are read from
a 256-entry table. Cells are not wrapped periodically, so a grid of side N
has (N-1)^3 cells.
*/
package isosurface

import (
	"math"
	"runtime"

	"github.com/phil-mansfield/xtal/density"
	"github.com/phil-mansfield/xtal/geom"

	"gonum.org/v1/gonum/spatial/r3"
)

// snapEps is the distance below which a threshold is treated as equal to a
// corner value.
const snapEps = 1e-10

// Extract returns the surface of g at threshold t using runtime.NumCPU()
// workers.
func Extract(g *density.VolumeGrid, t float64) *Mesh {
	return ExtractWorkers(g, t, runtime.NumCPU())
}

// ExtractWorkers returns the surface of g at threshold t, splitting the grid
// into z-slabs across the given number of goroutines. The result does not
// depend on the number of workers.
func ExtractWorkers(g *density.VolumeGrid, t float64, workers int) *Mesh {
	cells := g.N - 1
	if cells < 1 {
		return &Mesh{}
	}
	if workers < 1 {
		workers = 1
	}
	if workers > cells {
		workers = cells
	}

	bounds := geom.SplitRange(cells, workers)
	meshes := make([]Mesh, workers)
	out := make(chan int, workers)
	for id := 0; id < workers-1; id++ {
		go chanExtract(id, g, t, bounds[id], bounds[id+1], meshes, out)
	}
	chanExtract(workers-1, g, t, bounds[workers-1], bounds[workers], meshes, out)

	for i := 0; i < workers; i++ {
		<-out
	}

	m := &Mesh{}
	for i := range meshes {
		m.append(&meshes[i])
	}
	return m
}

func chanExtract(
	id int, g *density.VolumeGrid, t float64,
	zLow, zHigh int, meshes []Mesh, out chan<- int,
) {
	s := &slab{g: g, t: t, mesh: &meshes[id]}
	for z := zLow; z < zHigh; z++ {
		for y := 0; y < g.N-1; y++ {
			for x := 0; x < g.N-1; x++ {
				s.march(x, y, z)
			}
		}
	}
	out <- id
}

// slab holds the per-worker state of an extraction.
type slab struct {
	g    *density.VolumeGrid
	t    float64
	mesh *Mesh

	vals  [8]float64
	verts [12]r3.Vec
}

// march triangulates the cell whose lowest corner is (x, y, z).
func (s *slab) march(x, y, z int) {
	cfg := 0
	for i, off := range cornerOffsets {
		s.vals[i] = s.g.Values[s.g.Idx(x+off[0], y+off[1], z+off[2])]
		if s.vals[i] > s.t {
			cfg |= 1 << uint(i)
		}
	}

	edges := edgeTable[cfg]
	if edges == 0 {
		return
	}

	for e := 0; e < 12; e++ {
		if edges&(1<<uint(e)) != 0 {
			s.verts[e] = s.vertex(x, y, z, e)
		}
	}

	tris := &triTable[cfg]
	for i := 0; tris[i] != -1; i += 3 {
		s.mesh.add(s.verts[tris[i]], s.verts[tris[i+1]], s.verts[tris[i+2]])
	}
}

// vertex returns the point where the surface crosses edge e of a cell.
func (s *slab) vertex(x, y, z, e int) r3.Vec {
	ca, cb := edgeCorners[e][0], edgeCorners[e][1]
	pa, pb := s.point(x, y, z, ca), s.point(x, y, z, cb)
	va, vb := s.vals[ca], s.vals[cb]

	switch {
	case math.Abs(s.t-va) < snapEps:
		return pa
	case math.Abs(s.t-vb) < snapEps:
		return pb
	case math.Abs(va-vb) < snapEps:
		return pa
	}
	mu := (s.t - va) / (vb - va)
	return r3.Add(pa, r3.Scale(mu, r3.Sub(pb, pa)))
}

// point returns the position in angstroms of corner c of a cell.
func (s *slab) point(x, y, z, c int) r3.Vec {
	off := cornerOffsets[c]
	p := s.g.Position(x+off[0], y+off[1], z+off[2])
	return r3.Vec{X: p[0], Y: p[1], Z: p[2]}
}
