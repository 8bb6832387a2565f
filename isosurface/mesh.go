package isosurface

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is an unindexed triangle soup. Triangle i uses Positions[3i:3i+3],
// and Normals holds its face normal repeated once per vertex.
type Mesh struct {
	Positions []r3.Vec
	Normals   []r3.Vec
}

// Triangles returns the number of triangles in the mesh.
func (m *Mesh) Triangles() int { return len(m.Positions) / 3 }

// Empty returns true if the mesh has no triangles.
func (m *Mesh) Empty() bool { return len(m.Positions) == 0 }

// Triangle returns the corners of triangle i.
func (m *Mesh) Triangle(i int) [3]r3.Vec {
	return [3]r3.Vec{m.Positions[3*i], m.Positions[3*i+1], m.Positions[3*i+2]}
}

// Bounds returns the axis-aligned bounding box of the mesh. An empty mesh
// returns two zero vectors.
func (m *Mesh) Bounds() (min, max r3.Vec) {
	if m.Empty() {
		return r3.Vec{}, r3.Vec{}
	}
	min, max = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		min.X, max.X = math.Min(min.X, p.X), math.Max(max.X, p.X)
		min.Y, max.Y = math.Min(min.Y, p.Y), math.Max(max.Y, p.Y)
		min.Z, max.Z = math.Min(min.Z, p.Z), math.Max(max.Z, p.Z)
	}
	return min, max
}

// Area returns the total surface area.
func (m *Mesh) Area() float64 {
	area := 0.0
	for i := 0; i < m.Triangles(); i++ {
		t := m.Triangle(i)
		area += r3.Norm(r3.Cross(r3.Sub(t[1], t[0]), r3.Sub(t[2], t[0]))) / 2
	}
	return area
}

// Volume returns the signed volume enclosed by the mesh. It is only
// meaningful for closed meshes and is positive when the normals point
// outwards.
func (m *Mesh) Volume() float64 {
	vol := 0.0
	for i := 0; i < m.Triangles(); i++ {
		t := m.Triangle(i)
		vol += r3.Dot(t[0], r3.Cross(t[1], t[2])) / 6
	}
	return vol
}

// add appends a triangle and its flat normal. Degenerate triangles get a
// zero normal.
func (m *Mesh) add(p0, p1, p2 r3.Vec) {
	n := r3.Cross(r3.Sub(p1, p0), r3.Sub(p2, p0))
	if norm := r3.Norm(n); norm > 0 {
		n = r3.Scale(1/norm, n)
	}
	m.Positions = append(m.Positions, p0, p1, p2)
	m.Normals = append(m.Normals, n, n, n)
}

// append adds all the triangles of other to m.
func (m *Mesh) append(other *Mesh) {
	m.Positions = append(m.Positions, other.Positions...)
	m.Normals = append(m.Normals, other.Normals...)
}
