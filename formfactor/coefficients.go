package formfactor

import (
	"math"
)

// Coeffs are the Cromer-Mann parameters of the four-Gaussian approximation
//
//	f(s) = sum_i A[i] exp(-B[i] s^2) + C,  s = sin(theta)/lambda.
type Coeffs struct {
	A, B [4]float64
	C    float64
}

// Eval returns the scattering factor at s (1/Å).
func (c *Coeffs) Eval(s float64) float64 {
	s2 := s * s
	f := c.C
	for i := 0; i < 4; i++ {
		f += c.A[i] * math.Exp(-c.B[i]*s2)
	}
	return f
}

// International Tables Vol. C, Table 6.1.1.4 (neutral atoms).
var coeffTable = map[string]Coeffs{
	"H":  {[4]float64{0.489918, 0.262003, 0.196767, 0.049879}, [4]float64{20.6593, 7.74039, 49.5519, 2.20159}, 0.001305},
	"C":  {[4]float64{2.31000, 1.02000, 1.58860, 0.865000}, [4]float64{20.8439, 10.2075, 0.568700, 51.6512}, 0.215600},
	"N":  {[4]float64{12.2126, 3.13220, 2.01250, 1.16630}, [4]float64{0.005700, 9.89330, 28.9975, 0.582600}, -11.5290},
	"O":  {[4]float64{3.04850, 2.28680, 1.54630, 0.867000}, [4]float64{13.2771, 5.70110, 0.323900, 32.9089}, 0.250800},
	"F":  {[4]float64{3.53920, 2.64120, 1.51700, 1.02430}, [4]float64{10.2825, 4.29440, 0.261500, 26.1476}, 0.277600},
	"Na": {[4]float64{4.76260, 3.17360, 1.26740, 1.11280}, [4]float64{3.28500, 8.84220, 0.313600, 129.424}, 0.676000},
	"Mg": {[4]float64{5.42040, 2.17350, 1.22690, 2.30730}, [4]float64{2.82750, 79.2611, 0.380800, 7.19370}, 0.858400},
	"Al": {[4]float64{6.42020, 1.90020, 1.59360, 1.96460}, [4]float64{3.03870, 0.742600, 31.5472, 85.0886}, 1.11510},
	"Si": {[4]float64{6.29150, 3.03530, 1.98910, 1.54100}, [4]float64{2.43860, 32.3337, 0.678500, 81.6937}, 1.14070},
	"S":  {[4]float64{6.90530, 5.20340, 1.43790, 1.58630}, [4]float64{1.46790, 22.2151, 0.253600, 56.1720}, 0.866900},
	"Cl": {[4]float64{11.4604, 7.19640, 6.25560, 1.64550}, [4]float64{0.010400, 1.16620, 18.5194, 47.7784}, -9.55740},
	"K":  {[4]float64{8.21860, 7.43980, 1.05190, 0.865900}, [4]float64{12.7949, 0.774800, 213.187, 41.6841}, 1.42280},
	"Ca": {[4]float64{8.62660, 7.38730, 1.58990, 1.02110}, [4]float64{10.4421, 0.659900, 85.7484, 178.437}, 1.37510},
	"Ti": {[4]float64{9.75950, 7.35580, 1.69910, 1.90210}, [4]float64{7.85080, 0.500000, 35.6338, 116.105}, 1.28070},
	"Fe": {[4]float64{11.7695, 7.35730, 3.52220, 2.30450}, [4]float64{4.76110, 0.307200, 15.3535, 76.8805}, 1.03690},
	"Cu": {[4]float64{13.3380, 7.16760, 5.61580, 1.67350}, [4]float64{3.58280, 0.247000, 11.3966, 64.8126}, 1.19100},
	"Zn": {[4]float64{14.0743, 7.03180, 5.16520, 2.41000}, [4]float64{3.26550, 0.233300, 10.3163, 58.7097}, 1.30410},
}

// defaultZ is the atomic number of the element whose curve shape is used
// for elements missing from the table.
const defaultZ = 6

// Lookup returns the tabulated coefficients for an element symbol.
func Lookup(element string) (Coeffs, bool) {
	c, ok := coeffTable[Normalize(element)]
	return c, ok
}

// Elements returns the number of tabulated elements.
func Elements() int { return len(coeffTable) }
