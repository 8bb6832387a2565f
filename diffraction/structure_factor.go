package diffraction

import (
	"math"
	"math/cmplx"
	"math/rand/v2"

	"github.com/phil-mansfield/xtal/crystal"

	"gonum.org/v1/gonum/stat/distuv"
)

// scatterers groups the atoms of a structure by element so that each form
// factor is evaluated once per reflection.
type scatterers struct {
	elements  []string
	z         []int
	positions [][][3]float64
}

func newScatterers(s *crystal.Structure) *scatterers {
	sc := &scatterers{}
	index := map[string]int{}
	for _, at := range s.Atoms {
		i, ok := index[at.Element]
		if !ok {
			i = len(sc.elements)
			index[at.Element] = i
			sc.elements = append(sc.elements, at.Element)
			sc.z = append(sc.z, at.AtomicNumber)
			sc.positions = append(sc.positions, nil)
		}
		sc.positions[i] = append(sc.positions[i], at.Position)
	}
	return sc
}

// structureFactor evaluates F at (h, k, l) where s = sin(theta)/lambda.
func (sc *scatterers) structureFactor(
	h, k, l int, s float64, p *Params,
) complex128 {
	damping := math.Exp(-p.BFactor * s * s)
	fh, fk, fl := float64(h), float64(k), float64(l)

	var re, im float64
	for i, el := range sc.elements {
		f := p.FormFactors.F(el, sc.z[i], s) * damping
		for _, x := range sc.positions[i] {
			phase := 2 * math.Pi * (fh*x[0] + fk*x[1] + fl*x[2])
			sin, cos := math.Sincos(phase)
			re += f * cos
			im += f * sin
		}
	}
	return complex(re, im)
}

// StructureFactor returns F(hkl) = sum_j f_j exp(-B s^2) exp(2 pi i (h x_j +
// k y_j + l z_j)) with s = 1/(2d). Absences and noise are not applied.
func StructureFactor(s *crystal.Structure, h, k, l int, p Params) complex128 {
	d := s.DSpacing(h, k, l)
	return newScatterers(s).structureFactor(h, k, l, 1/(2*d), &p)
}

// noiseSeed derives a generator seed from the enumeration index of a
// reflection and the noise level.
func noiseSeed(idx int, n float64) uint64 {
	return uint64(idx)*2654435761 ^ math.Float64bits(n)
}

// noiseDist returns the standard normal distribution drawn from for the
// reflection with enumeration index idx.
func noiseDist(idx int, n float64) distuv.Normal {
	src := rand.NewPCG(noiseSeed(idx, n), 0x9e3779b97f4a7c15)
	return distuv.Normal{Mu: 0, Sigma: 1, Src: src}
}

// perturb scales the amplitude of f by (1 + n*g), where g is a standard
// normal deviate seeded by (idx, n). Since sqrt(I) = |F| this is noise
// proportional to the square root of the intensity. The phase is kept and
// the amplitude is never negative.
func perturb(f complex128, idx int, n float64) complex128 {
	g := noiseDist(idx, n).Rand()

	amp := cmplx.Abs(f)
	amp = math.Max(0, amp+n*g*amp)
	return cmplx.Rect(amp, cmplx.Phase(f))
}
