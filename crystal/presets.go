package crystal

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// SymOp is a space group operation acting on fractional coordinates:
// x' = Rot x + Trans.
type SymOp struct {
	Rot   [3][3]float64
	Trans [3]float64
}

// Apply returns the image of p wrapped into [0, 1).
func (op *SymOp) Apply(p [3]float64) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = op.Trans[i]
		for j := 0; j < 3; j++ {
			out[i] += op.Rot[i][j] * p[j]
		}
		out[i] = wrapUnit(out[i])
	}
	return out
}

func wrapUnit(x float64) float64 {
	x -= math.Floor(x)
	if x >= 1-1e-12 {
		x = 0
	}
	return x
}

func diag(x, y, z float64) [3][3]float64 {
	return [3][3]float64{{x, 0, 0}, {0, y, 0}, {0, 0, z}}
}

// PbcaOps are the eight general positions of space group Pbca (No. 61).
var PbcaOps = []SymOp{
	{diag(+1, +1, +1), [3]float64{0, 0, 0}},
	{diag(-1, -1, +1), [3]float64{0.5, 0, 0.5}},
	{diag(-1, +1, -1), [3]float64{0, 0.5, 0.5}},
	{diag(+1, -1, -1), [3]float64{0.5, 0.5, 0}},
	{diag(-1, -1, -1), [3]float64{0, 0, 0}},
	{diag(+1, +1, -1), [3]float64{0.5, 0, 0.5}},
	{diag(+1, -1, +1), [3]float64{0, 0.5, 0.5}},
	{diag(-1, +1, +1), [3]float64{0.5, 0.5, 0}},
}

// Expand applies every operation to every atom and drops images that land
// on an already occupied site of the same element.
func Expand(atoms []Atom, ops []SymOp) []Atom {
	out := []Atom{}
	for _, at := range atoms {
		for i := range ops {
			img := at
			img.Position = ops[i].Apply(at.Position)
			if !occupied(out, img) {
				out = append(out, img)
			}
		}
	}
	return out
}

func occupied(atoms []Atom, at Atom) bool {
	const eps = 1e-6
	for _, other := range atoms {
		if other.Element != at.Element {
			continue
		}
		same := true
		for k := 0; k < 3; k++ {
			d := math.Abs(other.Position[k] - at.Position[k])
			d = math.Min(d, 1-d)
			if d > eps {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	return false
}

func fccSites(el string, z int, offset [3]float64) []Atom {
	base := [][3]float64{{0, 0, 0}, {0, 0.5, 0.5}, {0.5, 0, 0.5}, {0.5, 0.5, 0}}
	atoms := make([]Atom, len(base))
	for i, p := range base {
		for k := 0; k < 3; k++ {
			p[k] = wrapUnit(p[k] + offset[k])
		}
		atoms[i] = Atom{el, p, z}
	}
	return atoms
}

// NaCl returns rock salt (Fm-3m, a = 5.64 Å) with all eight atoms of the
// conventional cell.
func NaCl() *Structure {
	atoms := fccSites("Na", 11, [3]float64{0, 0, 0})
	atoms = append(atoms, fccSites("Cl", 17, [3]float64{0.5, 0.5, 0.5})...)
	return &Structure{Lattice: FCC, A: 5.64, SpaceGroup: "Fm-3m", Atoms: atoms}
}

// Copper returns fcc copper (Fm-3m, a = 3.615 Å).
func Copper() *Structure {
	return &Structure{
		Lattice: FCC, A: 3.615, SpaceGroup: "Fm-3m",
		Atoms: fccSites("Cu", 29, [3]float64{0, 0, 0}),
	}
}

// Iron returns bcc alpha iron (Im-3m, a = 2.8665 Å).
func Iron() *Structure {
	return &Structure{
		Lattice: BCC, A: 2.8665, SpaceGroup: "Im-3m",
		Atoms: []Atom{
			{"Fe", [3]float64{0, 0, 0}, 26},
			{"Fe", [3]float64{0.5, 0.5, 0.5}, 26},
		},
	}
}

// CsCl returns caesium chloride (Pm-3m, a = 4.123 Å).
func CsCl() *Structure {
	return &Structure{
		Lattice: Cubic, A: 4.123, SpaceGroup: "Pm-3m",
		Atoms: []Atom{
			{"Cs", [3]float64{0, 0, 0}, 55},
			{"Cl", [3]float64{0.5, 0.5, 0.5}, 17},
		},
	}
}

// Silicon returns diamond-structure silicon (Fd-3m, a = 5.431 Å).
func Silicon() *Structure {
	atoms := fccSites("Si", 14, [3]float64{0, 0, 0})
	atoms = append(atoms, fccSites("Si", 14, [3]float64{0.25, 0.25, 0.25})...)
	return &Structure{Lattice: FCC, A: 5.431, SpaceGroup: "Fd-3m", Atoms: atoms}
}

// Rutile returns TiO2 in the rutile structure (P4_2/mnm).
func Rutile() *Structure {
	const u = 0.3049
	return &Structure{
		Lattice: Tetragonal, A: 4.594, C: 2.959, SpaceGroup: "P4_2/mnm",
		Atoms: []Atom{
			{"Ti", [3]float64{0, 0, 0}, 22},
			{"Ti", [3]float64{0.5, 0.5, 0.5}, 22},
			{"O", [3]float64{u, u, 0}, 8},
			{"O", [3]float64{1 - u, 1 - u, 0}, 8},
			{"O", [3]float64{0.5 + u, 0.5 - u, 0.5}, 8},
			{"O", [3]float64{0.5 - u, 0.5 + u, 0.5}, 8},
		},
	}
}

// Benzene returns solid benzene (Pbca, four molecules per cell) generated
// from its six-atom asymmetric unit.
func Benzene() *Structure {
	asym := []Atom{
		{"C", [3]float64{-0.0569, 0.1387, -0.0054}, 6},
		{"C", [3]float64{-0.1335, 0.0460, 0.1264}, 6},
		{"C", [3]float64{0.0774, 0.0925, -0.1295}, 6},
		{"H", [3]float64{-0.0976, 0.2447, -0.0177}, 1},
		{"H", [3]float64{-0.2409, 0.0794, 0.2218}, 1},
		{"H", [3]float64{0.1371, 0.1631, -0.2312}, 1},
	}
	return &Structure{
		Lattice: Orthorhombic, A: 7.39, B: 9.42, C: 6.81, SpaceGroup: "Pbca",
		Atoms: Expand(asym, PbcaOps),
	}
}

var presets = map[string]func() *Structure{
	"nacl":    NaCl,
	"copper":  Copper,
	"cu":      Copper,
	"iron":    Iron,
	"fe":      Iron,
	"cscl":    CsCl,
	"silicon": Silicon,
	"si":      Silicon,
	"rutile":  Rutile,
	"tio2":    Rutile,
	"benzene": Benzene,
}

// Preset returns a fresh copy of a named example structure.
func Preset(name string) (*Structure, error) {
	f, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf(
			"Preset '%s' not recognized. Known presets: %s.",
			name, strings.Join(PresetNames(), ", "),
		)
	}
	return f(), nil
}

// PresetNames lists the recognized preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
