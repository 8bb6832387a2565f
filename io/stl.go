package io

import (
	"bytes"
	"fmt"
	"io"

	"github.com/hschendel/stl"

	"github.com/phil-mansfield/xtal/isosurface"

	"gonum.org/v1/gonum/spatial/r3"
)

// Meshes are written as binary STL: an 80-byte header holding the mesh name,
// a triangle count, and one 50-byte record per triangle. Every corner of a
// triangle shares the face normal.

func toVec3(v r3.Vec) stl.Vec3 {
	return stl.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

func fromVec3(v stl.Vec3) r3.Vec {
	return r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])}
}

// NewSolid converts m to an STL solid. name is stored in the binary header
// and is truncated to 80 bytes.
func NewSolid(m *isosurface.Mesh, name string) *stl.Solid {
	header := make([]byte, 80)
	copy(header, name)

	solid := &stl.Solid{
		Name:         name,
		BinaryHeader: header,
		Triangles:    make([]stl.Triangle, m.Triangles()),
	}
	for i := range solid.Triangles {
		tri := m.Triangle(i)
		solid.Triangles[i].Normal = toVec3(m.Normals[3*i])
		for j := 0; j < 3; j++ {
			solid.Triangles[i].Vertices[j] = toVec3(tri[j])
		}
	}
	return solid
}

// WriteSTL writes m to wr as binary STL.
func WriteSTL(wr io.Writer, m *isosurface.Mesh, name string) error {
	return NewSolid(m, name).WriteAll(wr)
}

// ReadSTL reads an STL file of either encoding into a mesh along with its
// name.
func ReadSTL(rd io.Reader) (*isosurface.Mesh, string, error) {
	solid, err := stl.ReadAll(rd)
	if err != nil {
		return nil, "", fmt.Errorf("Could not read STL file: %s", err.Error())
	}

	name := solid.Name
	if !solid.IsAscii && solid.BinaryHeader != nil {
		name = string(solid.BinaryHeader)
		if i := bytes.IndexByte(solid.BinaryHeader, 0); i >= 0 {
			name = string(solid.BinaryHeader[:i])
		}
	}

	n := len(solid.Triangles)
	m := &isosurface.Mesh{
		Positions: make([]r3.Vec, 0, 3*n),
		Normals:   make([]r3.Vec, 0, 3*n),
	}
	for _, tri := range solid.Triangles {
		norm := fromVec3(tri.Normal)
		for j := 0; j < 3; j++ {
			m.Positions = append(m.Positions, fromVec3(tri.Vertices[j]))
			m.Normals = append(m.Normals, norm)
		}
	}
	return m, name, nil
}
