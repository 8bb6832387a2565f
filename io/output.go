package io

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/phil-mansfield/xtal/density"
)

var end = binary.LittleEndian

/*
The binary format used for density grids is as follows:
    |-- 1 --||-- ... 2 ... --|

    1 - (GridHeader) Header containing meta-information about the grid. The
        first field is a flag indicating the endianness of the file. 0
        indicates a big endian byte ordering and -1 indicates a little endian
        byte order.
    2 - ([]float32) Contiguous block of N^3 density values, x-major.
*/
type GridHeader struct {
	Type TypeInfo
	Cell CellInfo
	Loc  LocationInfo
}

type TypeInfo struct {
	Endianness int64
	HeaderSize int64
	GridType   int64
	Normalized int64
}

// CellInfo describes the unit cell the grid spans and the range of the raw
// density before normalization.
type CellInfo struct {
	Lengths                Vector
	MinDensity, MaxDensity float64
}

type LocationInfo struct {
	Origin, Spacing Vector
	Cells           int64
}

type Vector [3]float64

type GridFlag int64

const (
	Density GridFlag = iota
)

func endiannessFlag(order binary.ByteOrder) int64 {
	if order == binary.LittleEndian {
		return -1
	}
	return 0
}

// endianness converts an endianness flag to a byte order.
func endianness(flag int64) (binary.ByteOrder, error) {
	switch flag {
	case -1:
		return binary.LittleEndian, nil
	case 0:
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("Unrecognized endianness flag, %d.", flag)
}

// NewGridHeader returns the header describing g.
func NewGridHeader(g *density.VolumeGrid) GridHeader {
	hd := GridHeader{}
	hd.Type.Endianness = endiannessFlag(end)
	hd.Type.HeaderSize = int64(binary.Size(&hd))
	hd.Type.GridType = int64(Density)
	if g.Normalized {
		hd.Type.Normalized = 1
	}

	for k := 0; k < 3; k++ {
		hd.Cell.Lengths[k] = g.Spacing[k] * float64(g.N)
		hd.Loc.Origin[k] = g.Origin[k]
		hd.Loc.Spacing[k] = g.Spacing[k]
	}
	hd.Cell.MinDensity, hd.Cell.MaxDensity = g.Min, g.Max
	hd.Loc.Cells = int64(g.N)
	return hd
}

// WriteGrid writes g to wr as a header followed by float32 values.
func WriteGrid(wr io.Writer, g *density.VolumeGrid) error {
	hd := NewGridHeader(g)
	if err := binary.Write(wr, end, &hd); err != nil {
		return err
	}

	xs := make([]float32, len(g.Values))
	for i, x := range g.Values {
		xs[i] = float32(x)
	}
	return binary.Write(wr, end, xs)
}

// ReadGridHeader reads a grid header of either endianness and returns it
// along with the byte order of the file.
func ReadGridHeader(rd io.Reader) (*GridHeader, binary.ByteOrder, error) {
	hd := &GridHeader{}
	buf := make([]byte, binary.Size(hd))
	if _, err := io.ReadFull(rd, buf); err != nil {
		return nil, nil, err
	}

	// The flag is symmetric, so any order can read it.
	var flag int64
	binary.Read(bytes.NewReader(buf[:8]), end, &flag)
	order, err := endianness(flag)
	if err != nil {
		return nil, nil, err
	}
	if err := binary.Read(bytes.NewReader(buf), order, hd); err != nil {
		return nil, nil, err
	}

	switch {
	case hd.Type.HeaderSize != int64(len(buf)):
		return nil, nil, fmt.Errorf(
			"Expected GridHeader size of %d, found %d.",
			len(buf), hd.Type.HeaderSize,
		)
	case GridFlag(hd.Type.GridType) != Density:
		return nil, nil, fmt.Errorf(
			"Unrecognized grid type, %d.", hd.Type.GridType,
		)
	case hd.Loc.Cells < 1:
		return nil, nil, fmt.Errorf(
			"Grid has a non-positive cell count, %d.", hd.Loc.Cells,
		)
	case hd.Loc.Cells > density.DefaultMaxResolution:
		return nil, nil, fmt.Errorf(
			"%w: grid has %d cells per side, the limit is %d",
			density.ErrResolutionTooLarge, hd.Loc.Cells,
			density.DefaultMaxResolution,
		)
	}
	return hd, order, nil
}

// ReadGrid reads a grid written by WriteGrid.
func ReadGrid(rd io.Reader) (*density.VolumeGrid, error) {
	hd, order, err := ReadGridHeader(rd)
	if err != nil {
		return nil, err
	}

	n := int(hd.Loc.Cells)
	g := density.NewVolumeGrid(n, hd.Cell.Lengths)
	g.Origin = hd.Loc.Origin
	g.Spacing = hd.Loc.Spacing
	g.Min, g.Max = hd.Cell.MinDensity, hd.Cell.MaxDensity
	g.Normalized = hd.Type.Normalized != 0

	xs := make([]float32, n*n*n)
	if err := binary.Read(rd, order, xs); err != nil {
		return nil, err
	}
	for i, x := range xs {
		g.Values[i] = float64(x)
	}
	return g, nil
}
