/*
 * report.go, part of gochemopt.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package opt

import (
	"bufio"
	"fmt"
	"io"

	chem "github.com/rmera/gochemopt"
	v3 "github.com/rmera/gochemopt/v3"
)

const rule = "-------------------------------------------------------------\n"

func banner(title string) string {
	return "\n\n" + rule + title + "\n" + rule
}

func yesno(ok bool) string {
	if ok {
		return "YES"
	}
	return "NO"
}

// WriteIteration writes to out a block with the convergence criteria for the
// iteration it (0-based), their thresholds and whether they are satisfied.
func WriteIteration(out io.Writer, it int, m Metrics, th Thresholds) error {
	w := bufio.NewWriter(out)
	fmt.Fprint(w, banner(fmt.Sprintf("-----       GEOMETRY OPTIMIZATION Step %5d            -----", it+1)))
	fmt.Fprintf(w, "Convergence Criterion    Value        Threshold\n")
	fmt.Fprintf(w, "  Maximum Force        %10.6f   %10.6f  %s\n", m.MaxForce, th.MaxForce, yesno(m.MaxForceOK))
	fmt.Fprintf(w, "  RMS     Force        %10.6f   %10.6f  %s\n", m.RMSForce, th.RMSForce, yesno(m.RMSForceOK))
	fmt.Fprintf(w, "  Maximum Displacement %10.6f   %10.6f  %s\n", m.MaxDisp, th.MaxDisp, yesno(m.MaxDispOK))
	fmt.Fprintf(w, "  RMS     Displacement %10.6f   %10.6f  %s\n", m.RMSDisp, th.RMSDisp, yesno(m.RMSDispOK))
	return w.Flush()
}

const sequenceLegend = `                       Output Sequence
             +---------------------------------
             |   Atom1   Atom2   Atom3   ...
             +---------------------------------
       Atom1 |    1
       Atom2 |    2       3
       Atom3 |    4       5       6
         :   |    7       8       9      10

                      Output (Angstroms)
                      ------------------
`

// WriteFinal writes to out the geometry of mol (in Bohr), as XYZ in Angstrom, followed by
// the lower triangle of the interatomic distance matrix, in Angstrom, five values per line.
func WriteFinal(out io.Writer, mol *chem.Molecule) error {
	w := bufio.NewWriter(out)
	coords := v3.Zeros(mol.Coords.NVecs())
	coords.Scale(chem.Bohr2A, mol.Coords)
	fmt.Fprint(w, banner("-----                  OPTIMIZED GEOMETRY               -----"))
	fmt.Fprintln(w)
	if err := chem.XYZWrite(w, coords, mol, "Optimized geometry (Angstrom)"); err != nil {
		return err
	}
	fmt.Fprint(w, banner("-----                  DISTANCE MATRIX                  -----"))
	fmt.Fprintln(w)
	fmt.Fprint(w, sequenceLegend)
	dists := chem.DistanceTable(coords, 1)
	for i, d := range dists {
		fmt.Fprintf(w, "%11.5f ", d)
		if (i+1)%5 == 0 {
			fmt.Fprintln(w)
		}
	}
	if len(dists)%5 != 0 {
		fmt.Fprintln(w)
	}
	return w.Flush()
}
