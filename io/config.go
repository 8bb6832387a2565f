package io

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/phil-mansfield/xtal/crystal"
	"github.com/phil-mansfield/xtal/diffraction"
	"github.com/phil-mansfield/xtal/formfactor"
	"github.com/phil-mansfield/xtal/math/interpolate"
)

const (
	ExampleSimulationFile = `[Simulation]

#######################
# Required Parameters #
#######################

# Directory which output files will be written to. The directory must exist.
Output = path/to/output/dir

#######################
# Optional Parameters #
#######################

# Wavelength of the incident X-rays in angstroms. Default is Cu K-alpha.
# Wavelength = 1.5406

# Reflections with |h|, |k|, or |l| above MaxIndex are not generated. Default
# is 5.
# MaxIndex = 5

# Largest scattering angle in degrees. Zero (the default) accepts all angles.
# TwoThetaMax = 0

# Debye-Waller factor in square angstroms. Default is 0.
# BFactor = 0

# Relative amplitude noise in [0, 1]. Noise is reproducible: the same
# configuration always gives the same pattern.
# NoiseLevel = 0

# Requested points per side of the density grid. The next power of two is
# used. MaxResolution caps the grid to bound memory use.
# Resolution = 32
# MaxResolution = 256

# Width of the Gaussian damping applied to reflections before the inverse
# transform, in index units. 0 uses 0.8 * MaxIndex. Negative values disable
# damping.
# Sigma = 0

# Isosurface threshold as a percentage of the normalized density.
# IsoLevelPercent = 50

# Interpolation used for custom form factor curves: [ Linear | Spline ]
# Interpolation = Linear

# Writes a pyplot figure of the powder pattern to the output directory.
# Plot = false

# Output files which are useful for profiling and debugging.
# ProfileFile = prof.out
# LogFile = log.out

[Crystal]

# Either name a built-in structure:
# [ NaCl | Copper | Iron | CsCl | Silicon | Rutile | Benzene ]
Preset = NaCl

# or give the lattice explicitly and list atoms in [Atom] sections. Lattice
# must be one of [ Cubic | Tetragonal | Orthorhombic | FCC | BCC ]. B and C
# default to A.
# Lattice = FCC
# A = 5.64
# B = 0
# C = 0
# SpaceGroup = Fm-3m

# [Atom "Na1"]
# Element = Na
# X = 0
# Y = 0
# Z = 0
# AtomicNumber = 11

# Custom form factors replace the built-in ones for an element. Files have two
# whitespace separated columns, s = sin(theta)/lambda and f, with s ascending.
# Lines starting with '#' are ignored.
# [FormFactor "Na"]
# File = na_form_factor.txt`
)

// SimulationConfig holds the [Simulation] section.
type SimulationConfig struct {
	// Required
	Output string

	// Optional
	Wavelength                       float64
	MaxIndex                         int
	TwoThetaMax, BFactor, NoiseLevel float64
	Resolution, MaxResolution        int
	Sigma, IsoLevelPercent           float64
	Interpolation                    string
	Plot                             bool
	LogFile, ProfileFile             string
}

func (con *SimulationConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SimulationConfig) ValidWavelength() bool {
	return con.Wavelength > 0
}
func (con *SimulationConfig) ValidMaxIndex() bool {
	return con.MaxIndex >= 0
}
func (con *SimulationConfig) ValidTwoThetaMax() bool {
	return con.TwoThetaMax >= 0 && con.TwoThetaMax <= 180
}
func (con *SimulationConfig) ValidNoiseLevel() bool {
	return con.NoiseLevel >= 0 && con.NoiseLevel <= 1
}
func (con *SimulationConfig) ValidResolution() bool {
	return con.Resolution > 0
}
func (con *SimulationConfig) ValidMaxResolution() bool {
	return con.MaxResolution > 0
}
func (con *SimulationConfig) ValidIsoLevelPercent() bool {
	return con.IsoLevelPercent >= 0 && con.IsoLevelPercent <= 100
}
func (con *SimulationConfig) ValidInterpolation() bool {
	_, err := interpolate.ParsePolicy(con.Interpolation)
	return err == nil
}
func (con *SimulationConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SimulationConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

// CheckInit returns a descriptive error for the first invalid field.
func (con *SimulationConfig) CheckInit() error {
	switch {
	case !con.ValidOutput():
		return fmt.Errorf("Invalid/non-existent 'Output' value.")
	case !con.ValidWavelength():
		return fmt.Errorf(
			"'Wavelength' must be positive, but is %g.", con.Wavelength,
		)
	case !con.ValidMaxIndex():
		return fmt.Errorf(
			"'MaxIndex' must be non-negative, but is %d.", con.MaxIndex,
		)
	case !con.ValidTwoThetaMax():
		return fmt.Errorf(
			"'TwoThetaMax' must be in range [0, 180], but is %g.",
			con.TwoThetaMax,
		)
	case !con.ValidNoiseLevel():
		return fmt.Errorf(
			"'NoiseLevel' must be in range [0, 1], but is %g.", con.NoiseLevel,
		)
	case !con.ValidResolution():
		return fmt.Errorf(
			"'Resolution' must be positive, but is %d.", con.Resolution,
		)
	case !con.ValidMaxResolution():
		return fmt.Errorf(
			"'MaxResolution' must be positive, but is %d.", con.MaxResolution,
		)
	case !con.ValidIsoLevelPercent():
		return fmt.Errorf(
			"'IsoLevelPercent' must be in range [0, 100], but is %g.",
			con.IsoLevelPercent,
		)
	case !con.ValidInterpolation():
		return fmt.Errorf(
			"'Interpolation' must be one of [ Linear | Spline ], but is '%s'.",
			con.Interpolation,
		)
	}
	return nil
}

// Policy returns the interpolation policy named by Interpolation.
func (con *SimulationConfig) Policy() interpolate.Policy {
	p, err := interpolate.ParsePolicy(con.Interpolation)
	if err != nil {
		return interpolate.LinearPolicy
	}
	return p
}

// CrystalConfig holds the [Crystal] section.
type CrystalConfig struct {
	Preset string

	Lattice    string
	A, B, C    float64
	SpaceGroup string
}

func (con *CrystalConfig) ValidPreset() bool {
	_, err := crystal.Preset(con.Preset)
	return err == nil
}
func (con *CrystalConfig) ValidLattice() bool {
	_, err := crystal.ParseLattice(con.Lattice)
	return err == nil
}

// AtomConfig holds an [Atom "name"] section.
type AtomConfig struct {
	// Required
	Element string
	X, Y, Z float64

	// Optional
	AtomicNumber int
	Name         string
}

func (at *AtomConfig) CheckInit(name string) error {
	if strings.TrimSpace(at.Element) == "" {
		return fmt.Errorf("Need to specify an Element for Atom '%s'.", name)
	} else if at.AtomicNumber < 0 {
		return fmt.Errorf(
			"Atom '%s' given a negative AtomicNumber, %d.",
			name, at.AtomicNumber,
		)
	}
	at.Name = name
	return nil
}

// FormFactorConfig holds a [FormFactor "element"] section.
type FormFactorConfig struct {
	File string
}

type SimulationWrapper struct {
	Simulation SimulationConfig
	Crystal    CrystalConfig
	Atom       map[string]*AtomConfig
	FormFactor map[string]*FormFactorConfig
}

// DefaultSimulationWrapper returns a wrapper with every optional field set
// to its default.
func DefaultSimulationWrapper() *SimulationWrapper {
	con := SimulationConfig{}
	con.Wavelength = diffraction.CuKAlpha
	con.MaxIndex = 5
	con.Resolution = 32
	con.MaxResolution = 256
	con.IsoLevelPercent = 50
	con.Interpolation = "Linear"
	return &SimulationWrapper{Simulation: con}
}

// ReadSimulationConfig reads and checks a configuration file.
func ReadSimulationConfig(fname string) (*SimulationWrapper, error) {
	wrap := DefaultSimulationWrapper()
	if err := gcfg.ReadFileInto(wrap, fname); err != nil {
		return nil, err
	}
	if err := wrap.CheckInit(); err != nil {
		return nil, err
	}
	return wrap, nil
}

// ParseSimulationConfig is ReadSimulationConfig for configuration text.
func ParseSimulationConfig(text string) (*SimulationWrapper, error) {
	wrap := DefaultSimulationWrapper()
	if err := gcfg.ReadStringInto(wrap, text); err != nil {
		return nil, err
	}
	if err := wrap.CheckInit(); err != nil {
		return nil, err
	}
	return wrap, nil
}

// CheckInit checks every section of the configuration.
func (wrap *SimulationWrapper) CheckInit() error {
	if err := wrap.Simulation.CheckInit(); err != nil {
		return err
	}

	con := &wrap.Crystal
	if con.Preset != "" {
		if !con.ValidPreset() {
			_, err := crystal.Preset(con.Preset)
			return err
		} else if con.Lattice != "" || len(wrap.Atom) > 0 {
			return fmt.Errorf(
				"'Preset' cannot be combined with 'Lattice' or Atom sections.",
			)
		}
	} else {
		if !con.ValidLattice() {
			_, err := crystal.ParseLattice(con.Lattice)
			return err
		} else if len(wrap.Atom) == 0 {
			return fmt.Errorf(
				"Without a 'Preset', at least one Atom section is needed.",
			)
		}
	}

	for name, at := range wrap.Atom {
		if err := at.CheckInit(name); err != nil {
			return err
		}
	}
	for el, ff := range wrap.FormFactor {
		if ff.File == "" {
			return fmt.Errorf("Need to specify a File for FormFactor '%s'.", el)
		}
	}
	return nil
}

// AtomNames returns the names of the Atom sections in sorted order, which is
// the order atoms appear in the structure.
func (wrap *SimulationWrapper) AtomNames() []string {
	names := make([]string, 0, len(wrap.Atom))
	for name := range wrap.Atom {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Structure builds the crystal structure described by the configuration.
func (wrap *SimulationWrapper) Structure() (*crystal.Structure, error) {
	con := &wrap.Crystal
	if con.Preset != "" {
		return crystal.Preset(con.Preset)
	}

	lat, err := crystal.ParseLattice(con.Lattice)
	if err != nil {
		return nil, err
	}
	s := &crystal.Structure{
		Lattice: lat, A: con.A, B: con.B, C: con.C,
		SpaceGroup: strings.TrimSpace(con.SpaceGroup),
	}
	for _, name := range wrap.AtomNames() {
		at := wrap.Atom[name]
		s.Atoms = append(s.Atoms, crystal.Atom{
			Element:      formfactor.Normalize(at.Element),
			Position:     [3]float64{at.X, at.Y, at.Z},
			AtomicNumber: at.AtomicNumber,
		})
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// FormFactors reads every custom form factor curve and returns the table
// used for structure factors. Relative file names are resolved against dir.
func (wrap *SimulationWrapper) FormFactors(dir string) (*formfactor.Table, error) {
	curves := map[string]formfactor.Curve{}
	for el, ff := range wrap.FormFactor {
		fname := ff.File
		if !filepath.IsAbs(fname) {
			fname = filepath.Join(dir, fname)
		}
		c, err := ReadCurve(fname)
		if err != nil {
			return nil, fmt.Errorf("FormFactor '%s': %s", el, err.Error())
		}
		curves[el] = c
	}
	return formfactor.NewTable(curves, wrap.Simulation.Policy())
}
