/*
 * files.go, part of gochemopt.
 *
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
 * Gochem is developed at the laboratory for instruction in Swedish, Department of Chemistry,
 * University of Helsinki, Finland.
 *
 *
*/
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chem

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/gochemopt/v3"
)

//XYZ family. Coordinates in XYZ files are in Angstrom.

// XYZFileRead reads the first frame of the xyz file xyzname and returns it as a Molecule
// with charge 0 and multiplicity 1.
func XYZFileRead(xyzname string) (*Molecule, error) {
	xyzfile, err := os.Open(xyzname)
	if err != nil {
		return nil, CError{err.Error(), []string{"os.Open", "XYZFileRead"}}
	}
	defer xyzfile.Close()
	mol, err := XYZRead(xyzfile)
	if err != nil {
		return nil, errDecorate(err, "XYZFileRead "+xyzname)
	}
	return mol, nil
}

// XYZRead reads the first xyz frame from in.
func XYZRead(in io.Reader) (*Molecule, error) {
	xyz := bufio.NewReader(in)
	atoms, coords, _, err := readXYZFrame(xyz)
	if err != nil {
		return nil, errDecorate(err, "XYZRead")
	}
	return &Molecule{Topology: NewTopology(0, 1, atoms...), Coords: coords}, nil
}

// readXYZFrame reads one frame from xyz, returning the atoms, the coordinates and the
// comment line of the frame. It returns io.EOF, unchanged, if there is nothing else to read.
func readXYZFrame(xyz *bufio.Reader) ([]*Atom, *v3.Matrix, string, error) {
	line, err := xyz.ReadString('\n')
	if err != nil && strings.TrimSpace(line) == "" {
		if err == io.EOF {
			return nil, nil, "", err
		}
		return nil, nil, "", CError{"Ill formatted XYZ file: " + err.Error(), []string{"readXYZFrame"}}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms <= 0 {
		return nil, nil, "", CError{fmt.Sprintf("Ill formatted XYZ file: bad atom number line %q", strings.TrimSpace(line)), []string{"readXYZFrame"}}
	}
	comment, err := xyz.ReadString('\n')
	if err != nil {
		return nil, nil, "", CError{"Ill formatted XYZ file: missing comment line", []string{"readXYZFrame"}}
	}
	atoms := make([]*Atom, natoms)
	coords := make([]float64, natoms*3)
	for i := 0; i < natoms; i++ {
		line, err = xyz.ReadString('\n')
		if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
			return nil, nil, "", CError{fmt.Sprintf("XYZ frame ended after %d of %d atoms", i, natoms), []string{"readXYZFrame"}}
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, nil, "", CError{fmt.Sprintf("Line number %d of the frame ill formed", i+3), []string{"readXYZFrame"}}
		}
		atoms[i], err = NewAtom(fields[0])
		if err != nil {
			return nil, nil, "", errDecorate(err, "readXYZFrame")
		}
		atoms[i].ID = i + 1
		for j := 0; j < 3; j++ {
			coords[i*3+j], err = strconv.ParseFloat(fields[j+1], 64)
			if err != nil {
				return nil, nil, "", CError{fmt.Sprintf("Line number %d of the frame: %s", i+3, err.Error()), []string{"strconv.ParseFloat", "readXYZFrame"}}
			}
		}
	}
	mcoords, err := v3.NewMatrix(coords)
	if err != nil {
		return nil, nil, "", errDecorate(err, "readXYZFrame")
	}
	return atoms, mcoords, strings.TrimSpace(comment), nil
}

// XYZFileWrite writes the coordinates coords, in Angstrom, for the atoms in mol to the
// file xyzname, which is created (or overwritten).
func XYZFileWrite(xyzname string, coords *v3.Matrix, mol Atomer) error {
	out, err := os.Create(xyzname)
	if err != nil {
		return CError{err.Error(), []string{"os.Create", "XYZFileWrite"}}
	}
	defer out.Close()
	if err := XYZWrite(out, coords, mol, ""); err != nil {
		return errDecorate(err, "XYZFileWrite")
	}
	return nil
}

// XYZWrite writes one xyz frame with the coordinates coords for the atoms in mol and the given
// comment line, to out.
func XYZWrite(out io.Writer, coords *v3.Matrix, mol Atomer, comment string) error {
	if coords.NVecs() != mol.Len() {
		return CError{fmt.Sprintf("Mismatched number of atoms (%d) and coordinates (%d)", mol.Len(), coords.NVecs()), []string{"XYZWrite"}}
	}
	//comments can't span lines or the file would be broken.
	comment = strings.ReplaceAll(comment, "\n", " ")
	if _, err := fmt.Fprintf(out, "%-4d\n%s\n", mol.Len(), comment); err != nil {
		return CError{err.Error(), []string{"fmt.Fprintf", "XYZWrite"}}
	}
	for i := 0; i < mol.Len(); i++ {
		_, err := fmt.Fprintf(out, "%-2s  %12.6f%12.6f%12.6f\n", mol.Atom(i).Symbol, coords.At(i, 0), coords.At(i, 1), coords.At(i, 2))
		if err != nil {
			return CError{err.Error(), []string{"fmt.Fprintf", "XYZWrite"}}
		}
	}
	return nil
}

// XYZFrameReader reads consecutive frames from a multi-xyz stream.
type XYZFrameReader struct {
	r *bufio.Reader
}

// NewXYZFrameReader returns a reader for the multi-xyz stream in.
func NewXYZFrameReader(in io.Reader) *XYZFrameReader {
	return &XYZFrameReader{r: bufio.NewReader(in)}
}

// Next reads the next frame. It returns io.EOF when there are no more frames.
func (X *XYZFrameReader) Next() (*Molecule, string, error) {
	atoms, coords, comment, err := readXYZFrame(X.r)
	if err != nil {
		return nil, "", err
	}
	return &Molecule{Topology: NewTopology(0, 1, atoms...), Coords: coords}, comment, nil
}
