/*package crystal describes periodic crystal structures: a lattice, a space
group label, and the atoms of the basis in fractional coordinates.
*/
package crystal

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidLattice is wrapped by every error returned for non-positive
// lattice lengths.
var ErrInvalidLattice = errors.New("crystal: invalid lattice parameter")

// Lattice identifies the lattice geometry used for d-spacings and centring.
type Lattice int

const (
	Cubic Lattice = iota
	Tetragonal
	Orthorhombic
	FCC
	BCC
	EndLattice
)

var latticeNames = [EndLattice]string{
	"Cubic", "Tetragonal", "Orthorhombic", "FCC", "BCC",
}

func (l Lattice) String() string {
	if l < 0 || l >= EndLattice {
		return fmt.Sprintf("Lattice(%d)", int(l))
	}
	return latticeNames[l]
}

// IsCubic returns true for the three lattices with a single length.
func (l Lattice) IsCubic() bool {
	return l == Cubic || l == FCC || l == BCC
}

// ParseLattice converts a case-insensitive lattice name into a Lattice.
func ParseLattice(name string) (Lattice, error) {
	name = strings.TrimSpace(name)
	for l := Cubic; l < EndLattice; l++ {
		if strings.EqualFold(l.String(), name) {
			return l, nil
		}
	}
	return EndLattice, fmt.Errorf(
		"Lattice '%s' not recognized. Must be one of [%s].",
		name, strings.Join(latticeNames[:], " | "),
	)
}

// Atom is a single scattering site. Position is fractional and is not
// required to lie in [0, 1).
type Atom struct {
	Element      string
	Position     [3]float64
	AtomicNumber int
}

// Structure is an immutable crystal structure. B and C default to A when
// they are zero.
type Structure struct {
	Lattice    Lattice
	A, B, C    float64
	SpaceGroup string
	Atoms      []Atom
}

// Lengths returns the lattice lengths (a, b, c) with defaults applied. Cubic
// lattices always return (a, a, a) and tetragonal ones (a, a, c).
func (s *Structure) Lengths() (a, b, c float64) {
	a, b, c = s.A, s.B, s.C
	if b == 0 {
		b = a
	}
	if c == 0 {
		c = a
	}

	switch {
	case s.Lattice.IsCubic():
		return a, a, a
	case s.Lattice == Tetragonal:
		return a, a, c
	}
	return a, b, c
}

// Validate returns an error if the structure cannot be used for any
// computation.
func (s *Structure) Validate() error {
	if s.Lattice < 0 || s.Lattice >= EndLattice {
		return fmt.Errorf("Unknown lattice type %d.", int(s.Lattice))
	}

	if !(s.A > 0) {
		return fmt.Errorf("%w: a = %g must be positive", ErrInvalidLattice, s.A)
	} else if s.B < 0 || math.IsNaN(s.B) {
		return fmt.Errorf("%w: b = %g must be positive", ErrInvalidLattice, s.B)
	} else if s.C < 0 || math.IsNaN(s.C) {
		return fmt.Errorf("%w: c = %g must be positive", ErrInvalidLattice, s.C)
	}

	a, b, c := s.Lengths()
	if math.IsInf(a, 0) || math.IsInf(b, 0) || math.IsInf(c, 0) {
		return fmt.Errorf(
			"%w: lengths (%g, %g, %g) must be finite",
			ErrInvalidLattice, a, b, c,
		)
	}

	for i := range s.Atoms {
		if strings.TrimSpace(s.Atoms[i].Element) == "" {
			return fmt.Errorf("Atom %d has no element symbol.", i)
		}
	}
	return nil
}

// DSpacing returns the interplanar spacing of the (h, k, l) planes in
// angstroms. (0, 0, 0) returns +Inf.
func (s *Structure) DSpacing(h, k, l int) float64 {
	a, b, c := s.Lengths()
	fh, fk, fl := float64(h), float64(k), float64(l)

	var inv2 float64
	switch s.Lattice {
	case Tetragonal:
		inv2 = (fh*fh+fk*fk)/(a*a) + fl*fl/(c*c)
	case Orthorhombic:
		inv2 = fh*fh/(a*a) + fk*fk/(b*b) + fl*fl/(c*c)
	default:
		return a / math.Sqrt(fh*fh+fk*fk+fl*fl)
	}
	return 1 / math.Sqrt(inv2)
}

// MaxDSpacing returns the largest d-spacing of any non-zero reflection,
// which is the longest lattice length.
func (s *Structure) MaxDSpacing() float64 {
	a, b, c := s.Lengths()
	return math.Max(a, math.Max(b, c))
}

// Volume returns the unit cell volume in cubic angstroms.
func (s *Structure) Volume() float64 {
	a, b, c := s.Lengths()
	return a * b * c
}

// Centring returns the lattice centring symbol implied by the lattice type
// and the first letter of the space group: one of 'P', 'F', 'I', 'C', 'A',
// 'B' or 'R'.
func (s *Structure) Centring() byte {
	switch s.Lattice {
	case FCC:
		return 'F'
	case BCC:
		return 'I'
	}

	sg := strings.TrimSpace(s.SpaceGroup)
	if sg == "" {
		return 'P'
	}
	switch c := sg[0]; c {
	case 'F', 'I', 'C', 'A', 'B', 'R':
		return c
	}
	return 'P'
}
