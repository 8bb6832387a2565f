/*package io reads and writes the files used by xtal: configuration files,
form factor curves, reflection tables, density grids, and STL meshes.
*/
package io

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/phil-mansfield/table"

	"github.com/phil-mansfield/xtal/diffraction"
	"github.com/phil-mansfield/xtal/formfactor"
)

// ReadCurve reads a form factor curve from a text file with columns s and f.
func ReadCurve(fname string) (formfactor.Curve, error) {
	cols, err := table.ReadTable(fname, []int{0, 1}, nil)
	if err != nil {
		return nil, err
	}
	ss, fs := cols[0], cols[1]

	c := make(formfactor.Curve, len(ss))
	for i := range c {
		c[i] = formfactor.Point{S: ss[i], F: fs[i]}
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %s", fname, err.Error())
	}
	return c, nil
}

// reflectionColumns lists the columns of a reflection table. F is written as
// its real and imaginary parts.
var reflectionColumns = []string{
	"h", "k", "l", "d(A)", "2theta(deg)", "intensity", "multiplicity",
	"Re(F)", "Im(F)",
}

// WriteReflections writes refs as a whitespace separated table with a
// commented header line.
func WriteReflections(wr io.Writer, refs []diffraction.Reflection) error {
	bw := bufio.NewWriter(wr)
	fmt.Fprint(bw, "#")
	for _, col := range reflectionColumns {
		fmt.Fprintf(bw, " %s", col)
	}
	fmt.Fprintln(bw)

	for _, r := range refs {
		fmt.Fprintf(
			bw, "%4d %4d %4d %.10g %.10g %.10g %d %.10g %.10g\n",
			r.H, r.K, r.L, r.D, r.TwoTheta, r.Intensity, r.Multiplicity,
			real(r.F), imag(r.F),
		)
	}
	return bw.Flush()
}

// ReadReflections reads a table written by WriteReflections.
func ReadReflections(fname string) ([]diffraction.Reflection, error) {
	colIdxs := make([]int, len(reflectionColumns))
	for i := range colIdxs {
		colIdxs[i] = i
	}
	cols, err := table.ReadTable(fname, colIdxs, nil)
	if err != nil {
		return nil, err
	}

	refs := make([]diffraction.Reflection, len(cols[0]))
	for i := range refs {
		hkl := [3]int{}
		for k := 0; k < 3; k++ {
			x := cols[k][i]
			if x != math.Trunc(x) {
				return nil, fmt.Errorf(
					"%s: non-integer Miller index %g on row %d.", fname, x, i+1,
				)
			}
			hkl[k] = int(x)
		}

		refs[i] = diffraction.Reflection{
			H: hkl[0], K: hkl[1], L: hkl[2],
			D:            cols[3][i],
			TwoTheta:     cols[4][i],
			Intensity:    cols[5][i],
			Multiplicity: int(cols[6][i]),
			F:            complex(cols[7][i], cols[8][i]),
		}
	}
	return refs, nil
}
