/*package diffraction predicts the X-ray reflections of a crystal structure.

Two enumeration policies are provided and are intentionally kept separate.
Generate walks the full signed cube of Miller indices and is the input to
density reconstruction. Powder walks a reduced half-space, weights each
reflection by its multiplicity, merges coincident d-spacings and rescales
the result to a relative intensity scale.
*/
package diffraction

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	"github.com/phil-mansfield/xtal/crystal"
	"github.com/phil-mansfield/xtal/formfactor"
)

const (
	// PowderEpsilon is the fraction of the strongest powder line below which
	// lines are dropped.
	PowderEpsilon = 1e-6
	// PowderScale is the relative intensity of the strongest powder line.
	PowderScale = 100.0
	// mergeTolerance is the relative d-spacing difference below which two
	// powder lines are merged.
	mergeTolerance = 1e-9
)

// Params controls reflection generation.
type Params struct {
	// Wavelength of the incident radiation in angstroms.
	Wavelength float64
	// MaxIndex bounds |h|, |k| and |l|.
	MaxIndex int
	// TwoThetaMax is the largest accepted scattering angle in degrees. Zero
	// accepts every angle.
	TwoThetaMax float64
	// BFactor is the Debye-Waller factor in square angstroms.
	BFactor float64
	// Noise is the relative amplitude noise level, clamped to [0, 1].
	Noise float64
	// FormFactors supplies custom form factor curves. May be nil.
	FormFactors *formfactor.Table
}

// CuKAlpha is the Cu K-alpha wavelength in angstroms.
const CuKAlpha = 1.5406

// DefaultParams returns Cu K-alpha parameters with MaxIndex = 5.
func DefaultParams() Params {
	return Params{Wavelength: CuKAlpha, MaxIndex: 5}
}

func (p *Params) validate() error {
	if !(p.Wavelength > 0) || math.IsInf(p.Wavelength, 0) {
		return fmt.Errorf(
			"Wavelength must be positive and finite, but is %g.", p.Wavelength,
		)
	}
	return nil
}

func (p *Params) noise() float64 {
	switch {
	case math.IsNaN(p.Noise) || p.Noise <= 0:
		return 0
	case p.Noise > 1:
		return 1
	}
	return p.Noise
}

// Reflection is a single (h, k, l) reflection.
type Reflection struct {
	H, K, L int
	// D is the interplanar spacing in angstroms.
	D float64
	// TwoTheta is the scattering angle in degrees.
	TwoTheta float64
	// F is the structure factor.
	F complex128
	// Intensity is |F|^2 for Generate. For Powder it is the multiplicity
	// weighted intensity on the relative scale.
	Intensity    float64
	Multiplicity int
}

// Amplitude returns |F|.
func (r *Reflection) Amplitude() float64 { return cmplx.Abs(r.F) }

// Phase returns arg(F) in radians.
func (r *Reflection) Phase() float64 { return cmplx.Phase(r.F) }

// Indices returns (h, k, l) as an array.
func (r *Reflection) Indices() [3]int { return [3]int{r.H, r.K, r.L} }

// TwoTheta returns the Bragg angle 2*theta in degrees of planes with spacing
// d. ok is false if the Bragg condition cannot be satisfied.
func TwoTheta(d, wavelength float64) (twoTheta float64, ok bool) {
	sinTheta := wavelength / (2 * d)
	if math.IsNaN(sinTheta) || math.Abs(sinTheta) > 1 {
		return 0, false
	}
	return 2 * math.Asin(sinTheta) * 180 / math.Pi, true
}

// generator holds per-call state shared by both enumeration policies.
type generator struct {
	s     *crystal.Structure
	p     *Params
	sc    *scatterers
	noise float64
}

func newGenerator(s *crystal.Structure, p *Params) (*generator, error) {
	if s == nil {
		return nil, fmt.Errorf("No crystal structure given.")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &generator{s, p, newScatterers(s), p.noise()}, nil
}

// reflection computes the reflection at (h, k, l). ok is false if it is
// unobservable. idx is the enumeration index used to seed noise.
func (g *generator) reflection(h, k, l, idx int) (r Reflection, ok bool) {
	if h == 0 && k == 0 && l == 0 {
		return r, false
	}

	d := g.s.DSpacing(h, k, l)
	tt, ok := TwoTheta(d, g.p.Wavelength)
	if !ok || (g.p.TwoThetaMax > 0 && tt > g.p.TwoThetaMax) {
		return r, false
	}
	if IsAbsent(g.s, h, k, l) {
		return r, false
	}

	f := g.sc.structureFactor(h, k, l, 1/(2*d), g.p)
	if g.noise > 0 {
		f = perturb(f, idx, g.noise)
	}
	re, im := real(f), imag(f)

	return Reflection{
		H: h, K: k, L: l, D: d, TwoTheta: tt,
		F: f, Intensity: re*re + im*im, Multiplicity: 1,
	}, true
}

// Generate returns every observable reflection with -M <= h, k, l <= M in
// enumeration order (h slowest, l fastest). Multiplicities are all 1.
func Generate(s *crystal.Structure, p Params) ([]Reflection, error) {
	g, err := newGenerator(s, &p)
	if err != nil {
		return nil, err
	}

	m := p.MaxIndex
	out := []Reflection{}
	idx := 0
	for h := -m; h <= m; h++ {
		for k := -m; k <= m; k++ {
			for l := -m; l <= m; l++ {
				if r, ok := g.reflection(h, k, l, idx); ok {
					out = append(out, r)
				}
				idx++
			}
		}
	}
	return out, nil
}

// Powder returns the powder diffraction lines of a structure, sorted by
// increasing two-theta with the strongest line scaled to PowderScale.
func Powder(s *crystal.Structure, p Params) ([]Reflection, error) {
	g, err := newGenerator(s, &p)
	if err != nil {
		return nil, err
	}

	lines := []Reflection{}
	idx := 0
	forPowderIndices(s.Lattice, p.MaxIndex, func(h, k, l int) {
		if r, ok := g.reflection(h, k, l, idx); ok {
			r.Multiplicity = Multiplicity(s.Lattice, h, k, l)
			r.Intensity *= float64(r.Multiplicity)
			lines = append(lines, r)
		}
		idx++
	})

	lines = mergeLines(lines)
	return scaleLines(lines), nil
}

// forPowderIndices calls f on one representative of each family of
// reflections related by the Laue symmetry of the lattice.
func forPowderIndices(lat crystal.Lattice, m int, f func(h, k, l int)) {
	switch {
	case lat.IsCubic():
		for h := 0; h <= m; h++ {
			for k := 0; k <= h; k++ {
				for l := 0; l <= k; l++ {
					f(h, k, l)
				}
			}
		}
	case lat == crystal.Tetragonal:
		for h := 0; h <= m; h++ {
			for k := 0; k <= h; k++ {
				for l := 0; l <= m; l++ {
					f(h, k, l)
				}
			}
		}
	default:
		for h := 0; h <= m; h++ {
			for k := 0; k <= m; k++ {
				for l := 0; l <= m; l++ {
					f(h, k, l)
				}
			}
		}
	}
}

// mergeLines combines lines with equal d-spacings. The indices and structure
// factor of the first enumerated member are kept.
func mergeLines(lines []Reflection) []Reflection {
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].D > lines[j].D
	})

	out := []Reflection{}
	for _, r := range lines {
		n := len(out)
		if n > 0 && math.Abs(out[n-1].D-r.D) <= mergeTolerance*out[n-1].D {
			out[n-1].Intensity += r.Intensity
			out[n-1].Multiplicity += r.Multiplicity
			continue
		}
		out = append(out, r)
	}
	return out
}

// scaleLines drops weak lines and rescales the rest so that the strongest
// has intensity PowderScale. Lines are already in two-theta order.
func scaleLines(lines []Reflection) []Reflection {
	peak := 0.0
	for i := range lines {
		peak = math.Max(peak, lines[i].Intensity)
	}
	if peak <= 0 {
		return []Reflection{}
	}

	out := lines[:0]
	for _, r := range lines {
		if r.Intensity < PowderEpsilon*peak {
			continue
		}
		r.Intensity *= PowderScale / peak
		out = append(out, r)
	}
	return out
}
