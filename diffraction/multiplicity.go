package diffraction

import (
	"sort"

	"github.com/phil-mansfield/xtal/crystal"
)

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Multiplicity returns the number of reflections symmetry-equivalent to
// (h, k, l) under the Laue group of the lattice: m-3m for the cubic lattices,
// 4/mmm for tetragonal and mmm for orthorhombic. (0, 0, 0) returns 1.
func Multiplicity(lat crystal.Lattice, h, k, l int) int {
	h, k, l = abs(h), abs(k), abs(l)
	if h == 0 && k == 0 && l == 0 {
		return 1
	}

	switch {
	case lat.IsCubic():
		return cubicMultiplicity(h, k, l)
	case lat == crystal.Tetragonal:
		return tetragonalMultiplicity(h, k, l)
	}
	return orthorhombicMultiplicity(h, k, l)
}

func cubicMultiplicity(h, k, l int) int {
	idx := []int{h, k, l}
	sort.Sort(sort.Reverse(sort.IntSlice(idx)))
	a, b, c := idx[0], idx[1], idx[2]

	switch {
	case b == 0: // h00
		return 6
	case c == 0 && a == b: // hh0
		return 12
	case c == 0: // hk0
		return 24
	case a == b && b == c: // hhh
		return 8
	case a == b || b == c: // hhl
		return 24
	}
	return 48
}

func tetragonalMultiplicity(h, k, l int) int {
	switch {
	case h == 0 && k == 0: // 00l
		return 2
	case l == 0 && (h == 0 || k == 0 || h == k): // h00, hh0
		return 4
	case l == 0: // hk0
		return 8
	case h == 0 || k == 0 || h == k: // h0l, hhl
		return 8
	}
	return 16
}

func orthorhombicMultiplicity(h, k, l int) int {
	m := 1
	for _, i := range []int{h, k, l} {
		if i != 0 {
			m *= 2
		}
	}
	return m
}
