/*package density reconstructs real-space electron density from a set of
reflections with a damped three-dimensional inverse Fourier transform.

Reflections are placed on an N^3 reciprocal grid at their wrapped indices,
weighted by a Gaussian in |hkl| to suppress truncation ripples, transformed
one axis at a time, and the real part is normalized onto [0, 1].
*/
package density

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"runtime"

	"github.com/phil-mansfield/xtal/crystal"
	"github.com/phil-mansfield/xtal/diffraction"
	"github.com/phil-mansfield/xtal/geom"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrResolutionTooLarge is wrapped by the error returned when the grid would
// exceed the configured memory ceiling.
var ErrResolutionTooLarge = errors.New("density: resolution too large")

// ErrResolutionTooSmall is wrapped by the error returned when a reflection's
// index would wrap onto another reflection's cell of the grid.
var ErrResolutionTooSmall = errors.New("density: resolution too small")

const (
	// DefaultSigmaScale sets the damping width to DefaultSigmaScale * MaxIndex
	// when no width is given.
	DefaultSigmaScale = 0.8
	// DefaultMaxResolution is the largest grid side allowed by default.
	DefaultMaxResolution = 256
	// MinGridSize is the smallest grid side.
	MinGridSize = 4
)

// Params controls reconstruction.
type Params struct {
	// Resolution is the requested number of points per side. The grid uses
	// the next power of two.
	Resolution int
	// MaxResolution bounds the grid side. Zero uses DefaultMaxResolution.
	MaxResolution int
	// MaxIndex is the index bound used to generate the reflections. Zero
	// infers it from the reflections.
	MaxIndex int
	// Sigma is the width of the Gaussian damping in index units. Zero uses
	// DefaultSigmaScale * MaxIndex and a negative value disables damping.
	Sigma float64
	// Workers is the number of goroutines used for the transform. Zero uses
	// runtime.NumCPU().
	Workers int
}

// GridSize returns the grid side used for a requested resolution: the
// smallest power of two which is at least resolution and MinGridSize.
func GridSize(resolution int) int {
	n := MinGridSize
	for n < resolution {
		n *= 2
	}
	return n
}

// DampingSigma returns the damping width Reconstruct uses for the given
// reflections. A non-positive result means no damping.
func (p *Params) DampingSigma(refs []diffraction.Reflection) float64 {
	if p.Sigma != 0 {
		return p.Sigma
	}
	m := p.MaxIndex
	if m <= 0 {
		for i := range refs {
			m = maxAbs(m, refs[i].H, refs[i].K, refs[i].L)
		}
	}
	return DefaultSigmaScale * float64(m)
}

func maxAbs(m int, xs ...int) int {
	for _, x := range xs {
		if x < 0 {
			x = -x
		}
		if x > m {
			m = x
		}
	}
	return m
}

// Reconstruct computes the normalized electron density of one unit cell from
// a list of reflections. Multiplicities are ignored: the reflections are
// expected to come from the full signed enumeration. A nil structure gives a
// cell with unit edges.
func Reconstruct(
	refs []diffraction.Reflection, s *crystal.Structure, p Params,
) (*VolumeGrid, error) {
	maxRes := p.MaxResolution
	if maxRes <= 0 {
		maxRes = DefaultMaxResolution
	}
	n := GridSize(p.Resolution)
	if n > maxRes {
		return nil, fmt.Errorf(
			"%w: grid side %d (from resolution %d) exceeds the limit of %d",
			ErrResolutionTooLarge, n, p.Resolution, maxRes,
		)
	}

	// Indices at or past n/2 fold onto -n/2 and below.
	m := 0
	for i := range refs {
		m = maxAbs(m, refs[i].H, refs[i].K, refs[i].L)
	}
	if 2*m >= n {
		return nil, fmt.Errorf(
			"%w: reflections reach index %d, which needs a grid side above "+
				"%d, but resolution %d gives %d",
			ErrResolutionTooSmall, m, 2*m, p.Resolution, n,
		)
	}

	lengths := [3]float64{1, 1, 1}
	if s != nil {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		lengths[0], lengths[1], lengths[2] = s.Lengths()
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	t := newTransformer(n, workers)
	t.place(refs, p.DampingSigma(refs))
	for axis := 0; axis < 3; axis++ {
		t.pass(axis)
	}

	g := NewVolumeGrid(n, lengths)
	for i, c := range t.data {
		g.Values[i] = real(c)
	}
	g.normalize()
	return g, nil
}

// transformer holds the reciprocal grid and one workspace per worker.
type transformer struct {
	n, workers int
	idx        *geom.Grid
	data       []complex128
	workspaces []workspace
}

type workspace struct {
	fft  *fourier.CmplxFFT
	line []complex128
}

func newTransformer(n, workers int) *transformer {
	t := &transformer{
		n: n, workers: workers,
		idx:        geom.NewCubeGrid(n),
		data:       make([]complex128, n*n*n),
		workspaces: make([]workspace, workers),
	}
	for i := range t.workspaces {
		t.workspaces[i].fft = fourier.NewCmplxFFT(n)
		t.workspaces[i].line = make([]complex128, n)
	}
	return t
}

// place writes conj(F) times the damping factor at each reflection's
// wrapped index. The backward transform of conj(F) has the real part
// sum_hkl F exp(-2 pi i (hx + ky + lz)).
func (t *transformer) place(refs []diffraction.Reflection, sigma float64) {
	n := t.n
	for i := range refs {
		r := &refs[i]
		w := 1.0
		if sigma > 0 {
			h2 := float64(r.H*r.H + r.K*r.K + r.L*r.L)
			w = math.Exp(-h2 / (2 * sigma * sigma))
		}
		j := t.idx.Idx(geom.Wrap(r.H, n), geom.Wrap(r.K, n), geom.Wrap(r.L, n))
		t.data[j] += cmplx.Conj(r.F) * complex(w, 0)
	}
}

// pass applies the inverse transform along one axis to all n^2 lines.
func (t *transformer) pass(axis int) {
	out := make(chan int, t.workers)
	for id := 0; id < t.workers-1; id++ {
		go t.chanPass(id, axis, out)
	}
	t.chanPass(t.workers-1, axis, out)

	for i := 0; i < t.workers; i++ {
		<-out
	}
}

// chanPass transforms every workers-th line starting at line id and reports
// id on out. Lines never overlap, so workers do not need to synchronize.
func (t *transformer) chanPass(id, axis int, out chan<- int) {
	w := &t.workspaces[id]
	lines := t.n * t.n
	for j := id; j < lines; j += t.workers {
		start, stride := t.line(axis, j)
		for i := 0; i < t.n; i++ {
			w.line[i] = t.data[start+i*stride]
		}
		w.fft.Sequence(w.line, w.line)
		for i := 0; i < t.n; i++ {
			t.data[start+i*stride] = w.line[i]
		}
	}
	out <- id
}

// line returns the first index and stride of line j along an axis.
func (t *transformer) line(axis, j int) (start, stride int) {
	n := t.n
	switch axis {
	case 0:
		return j * n, 1
	case 1:
		return (j % n) + (j/n)*n*n, n
	default:
		return j, n * n
	}
}
