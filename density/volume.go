package density

import (
	"fmt"
	"math"

	"github.com/phil-mansfield/xtal/geom"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// VolumeGrid is a periodic N x N x N scalar field over one unit cell. Values
// are stored with x varying fastest, then y, then z.
type VolumeGrid struct {
	N      int
	Values []float64
	// Origin and Spacing give the position in angstroms of the point
	// (x, y, z): Origin + (x, y, z) * Spacing.
	Origin, Spacing [3]float64
	// Min and Max are the extremes of the field before normalization.
	Min, Max   float64
	Normalized bool

	idx *geom.Grid
}

// NewVolumeGrid returns a zeroed grid with n points per side spanning a cell
// with the given edge lengths.
func NewVolumeGrid(n int, lengths [3]float64) *VolumeGrid {
	g := &VolumeGrid{
		N:      n,
		Values: make([]float64, n*n*n),
		idx:    geom.NewCubeGrid(n),
	}
	for k := 0; k < 3; k++ {
		g.Spacing[k] = lengths[k] / float64(n)
	}
	return g
}

func (g *VolumeGrid) grid() *geom.Grid {
	if g.idx == nil || g.idx.Width[0] != g.N {
		g.idx = geom.NewCubeGrid(g.N)
	}
	return g.idx
}

// Idx returns the index into Values of the point (x, y, z).
func (g *VolumeGrid) Idx(x, y, z int) int {
	return g.grid().Idx(x, y, z)
}

// At returns the value at (x, y, z), wrapping coordinates periodically.
func (g *VolumeGrid) At(x, y, z int) float64 {
	return g.Values[g.grid().PeriodicIdx(x, y, z)]
}

// Position returns the location of (x, y, z) in angstroms.
func (g *VolumeGrid) Position(x, y, z int) [3]float64 {
	return [3]float64{
		g.Origin[0] + float64(x)*g.Spacing[0],
		g.Origin[1] + float64(y)*g.Spacing[1],
		g.Origin[2] + float64(z)*g.Spacing[2],
	}
}

// Sample trilinearly interpolates the field at fractional cell coordinates,
// which are wrapped into [0, 1).
func (g *VolumeGrid) Sample(fx, fy, fz float64) float64 {
	var i0 [3]int
	var t [3]float64
	for k, f := range [3]float64{fx, fy, fz} {
		u := f * float64(g.N)
		fl := math.Floor(u)
		i0[k], t[k] = int(fl), u-fl
	}

	sum := 0.0
	for c := 0; c < 8; c++ {
		w := 1.0
		var d [3]int
		for k := 0; k < 3; k++ {
			if c&(1<<uint(k)) != 0 {
				d[k], w = 1, w*t[k]
			} else {
				w *= 1 - t[k]
			}
		}
		if w != 0 {
			sum += w * g.At(i0[0]+d[0], i0[1]+d[1], i0[2]+d[2])
		}
	}
	return sum
}

// Slice returns a copy of the N x N plane perpendicular to axis (0, 1 or 2)
// at the given index. The first in-plane axis varies fastest.
func (g *VolumeGrid) Slice(axis, index int) ([]float64, error) {
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("Axis %d is not 0, 1, or 2.", axis)
	} else if index < 0 || index >= g.N {
		return nil, fmt.Errorf(
			"Slice index %d out of range [0, %d).", index, g.N,
		)
	}

	out := make([]float64, 0, g.N*g.N)
	for j := 0; j < g.N; j++ {
		for i := 0; i < g.N; i++ {
			switch axis {
			case 0:
				out = append(out, g.At(index, i, j))
			case 1:
				out = append(out, g.At(i, index, j))
			case 2:
				out = append(out, g.At(i, j, index))
			}
		}
	}
	return out, nil
}

// Denormalize maps a normalized value back onto the raw density scale.
func (g *VolumeGrid) Denormalize(v float64) float64 {
	if !g.Normalized {
		return v
	}
	return g.Min + v*(g.Max-g.Min)
}

// MeanStdDev returns the mean and standard deviation of the stored values.
func (g *VolumeGrid) MeanStdDev() (mean, std float64) {
	return stat.MeanStdDev(g.Values, nil)
}

// SigmaLevel returns the value k standard deviations above the mean, clamped
// to the range of the stored values.
func (g *VolumeGrid) SigmaLevel(k float64) float64 {
	mean, std := g.MeanStdDev()
	lo, hi := floats.Min(g.Values), floats.Max(g.Values)
	return math.Max(lo, math.Min(hi, mean+k*std))
}

// LocalMaxima returns the points which are strictly larger than all 26 of
// their periodic neighbors, in storage order.
func (g *VolumeGrid) LocalMaxima() [][3]int {
	out := [][3]int{}
	n := g.N
	for z := 0; z < n; z++ {
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				if g.isLocalMax(x, y, z) {
					out = append(out, [3]int{x, y, z})
				}
			}
		}
	}
	return out
}

func (g *VolumeGrid) isLocalMax(x, y, z int) bool {
	v := g.At(x, y, z)
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				if g.At(x+dx, y+dy, z+dz) >= v {
					return false
				}
			}
		}
	}
	return true
}

// normalize rescales Values onto [0, 1], recording the original extremes. A
// constant field becomes all zeros.
func (g *VolumeGrid) normalize() {
	g.Min, g.Max = floats.Min(g.Values), floats.Max(g.Values)
	floats.AddConst(-g.Min, g.Values)
	if width := g.Max - g.Min; width > 0 {
		floats.Scale(1/width, g.Values)
	} else {
		for i := range g.Values {
			g.Values[i] = 0
		}
	}
	g.Normalized = true
}
