/*package xtal runs the full simulation chain: reflections are generated
from a crystal structure, the electron density is reconstructed from them,
and an isosurface is extracted from the density.
*/
package xtal

import (
	"fmt"
	"log"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/phil-mansfield/xtal/crystal"
	"github.com/phil-mansfield/xtal/density"
	"github.com/phil-mansfield/xtal/diffraction"
	"github.com/phil-mansfield/xtal/io"
	"github.com/phil-mansfield/xtal/isosurface"
)

// Output file names written by Result.Write.
const (
	ReflectionFile = "reflections.txt"
	PowderFile     = "powder.txt"
	GridFile       = "density.grid"
	MeshFile       = "surface.stl"
)

// Pipeline holds one complete parameter set.
type Pipeline struct {
	Structure       *crystal.Structure
	Diffraction     diffraction.Params
	Density         density.Params
	IsoLevelPercent float64

	log bool
	ms  runtime.MemStats
}

// Result is the output of every stage of a Pipeline.
type Result struct {
	Reflections []diffraction.Reflection
	Powder      []diffraction.Reflection
	Grid        *density.VolumeGrid
	Mesh        *isosurface.Mesh
	// IsoLevel is the normalized threshold the mesh was extracted at.
	IsoLevel float64
}

// NewPipeline checks the structure and returns a pipeline with logging
// turned off.
func NewPipeline(
	s *crystal.Structure, dp diffraction.Params,
	gp density.Params, isoLevelPercent float64,
) (*Pipeline, error) {
	if s == nil {
		return nil, fmt.Errorf("No crystal structure given.")
	} else if err := s.Validate(); err != nil {
		return nil, err
	} else if isoLevelPercent < 0 || isoLevelPercent > 100 {
		return nil, fmt.Errorf(
			"Iso level must be in range [0, 100], but is %g.", isoLevelPercent,
		)
	}
	return &Pipeline{
		Structure: s, Diffraction: dp,
		Density: gp, IsoLevelPercent: isoLevelPercent,
	}, nil
}

// NewPipelineFromConfig builds a pipeline from a configuration file's
// contents. dir is the directory relative form factor files are read from.
func NewPipelineFromConfig(
	wrap *io.SimulationWrapper, dir string, workers int,
) (*Pipeline, error) {
	s, err := wrap.Structure()
	if err != nil {
		return nil, err
	}
	tab, err := wrap.FormFactors(dir)
	if err != nil {
		return nil, err
	}

	con := &wrap.Simulation
	dp := diffraction.Params{
		Wavelength:  con.Wavelength,
		MaxIndex:    con.MaxIndex,
		TwoThetaMax: con.TwoThetaMax,
		BFactor:     con.BFactor,
		Noise:       con.NoiseLevel,
		FormFactors: tab,
	}
	gp := density.Params{
		Resolution:    con.Resolution,
		MaxResolution: con.MaxResolution,
		MaxIndex:      con.MaxIndex,
		Sigma:         con.Sigma,
		Workers:       workers,
	}
	return NewPipeline(s, dp, gp, con.IsoLevelPercent)
}

// Log turns stage logging on or off.
func (p *Pipeline) Log(flag bool) { p.log = flag }

func (p *Pipeline) logStage(name string, start time.Time) {
	if !p.log {
		return
	}
	runtime.ReadMemStats(&p.ms)
	log.Printf(
		"%-12s %8.3f s  Alloc: %5d MB, Sys: %5d MB",
		name, time.Since(start).Seconds(), p.ms.Alloc>>20, p.ms.Sys>>20,
	)
}

// Run executes every stage from scratch.
func (p *Pipeline) Run() (*Result, error) {
	res := &Result{IsoLevel: p.IsoLevelPercent / 100}
	var err error

	start := time.Now()
	res.Reflections, err = diffraction.Generate(p.Structure, p.Diffraction)
	if err != nil {
		return nil, err
	}
	p.logStage("Reflections", start)
	if p.log {
		log.Printf("Generated %d reflections.", len(res.Reflections))
	}

	start = time.Now()
	res.Powder, err = diffraction.Powder(p.Structure, p.Diffraction)
	if err != nil {
		return nil, err
	}
	p.logStage("Powder", start)

	start = time.Now()
	res.Grid, err = density.Reconstruct(res.Reflections, p.Structure, p.Density)
	if err != nil {
		return nil, err
	}
	p.logStage("Density", start)
	if p.log {
		log.Printf(
			"Density grid: %d^3 points, raw range [%.4g, %.4g].",
			res.Grid.N, res.Grid.Min, res.Grid.Max,
		)
	}

	start = time.Now()
	workers := p.Density.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	res.Mesh = isosurface.ExtractWorkers(res.Grid, res.IsoLevel, workers)
	p.logStage("Isosurface", start)
	if p.log {
		log.Printf(
			"Isosurface at %g%%: %d triangles.",
			p.IsoLevelPercent, res.Mesh.Triangles(),
		)
	}

	return res, nil
}

// Write writes every output of res to the directory dir, which must exist.
func (res *Result) Write(dir string) error {
	if err := writeFile(path.Join(dir, ReflectionFile), func(f *os.File) error {
		return io.WriteReflections(f, res.Reflections)
	}); err != nil {
		return err
	}
	if err := writeFile(path.Join(dir, PowderFile), func(f *os.File) error {
		return io.WriteReflections(f, res.Powder)
	}); err != nil {
		return err
	}
	if err := writeFile(path.Join(dir, GridFile), func(f *os.File) error {
		return io.WriteGrid(f, res.Grid)
	}); err != nil {
		return err
	}
	return writeFile(path.Join(dir, MeshFile), func(f *os.File) error {
		name := fmt.Sprintf("xtal isosurface %g", res.IsoLevel)
		return io.WriteSTL(f, res.Mesh, name)
	})
}

func writeFile(fname string, write func(f *os.File) error) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
