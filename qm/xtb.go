/*
 * xtb.go, part of gochemopt.
 *
 *
 * Copyright 2016 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
 *
 * Gochem is developed at the laboratory for instruction in Swedish, Department of Chemistry,
 * University of Helsinki, Finland.
 *
 *
 */
//In order to use this part of the library you need the xtb program, which must be obtained from Prof. Stefan Grimme's group.
//Please cite the the xtb references if you used the program.

/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package qm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	chem "github.com/rmera/gochemopt"
	v3 "github.com/rmera/gochemopt/v3"
)

// XTBHandle runs single-point energy+gradient calculations with xtb.
// Note that the default methods vary with each program, and even
// for a given program they are NOT considered part of the API, so they can always change.
type XTBHandle struct {
	command   string
	inputname string
	dir       string
	nCPU      int
}

// NewXTBHandle returns a handle with default settings.
func NewXTBHandle() *XTBHandle {
	run := new(XTBHandle)
	run.SetDefaults()
	return run
}

//XTBHandle methods

// SetnCPU sets the number of CPU to be used
func (O *XTBHandle) SetnCPU(cpu int) {
	O.nCPU = cpu
}

func (O *XTBHandle) Command() string {
	return O.command
}

func (O *XTBHandle) SetName(name string) {
	O.inputname = name
}

func (O *XTBHandle) SetCommand(name string) {
	O.command = name
}

// SetWorkDir sets the directory where xtb runs and leaves its files.
// The default is the current directory.
func (O *XTBHandle) SetWorkDir(dir string) {
	O.dir = dir
}

func (O *XTBHandle) SetDefaults() {
	O.command = "xtb"
	O.inputname = "gochem"
	cpu := runtime.NumCPU() / 2
	O.nCPU = cpu
}

func (O *XTBHandle) path(name string) string {
	if O.dir == "" {
		return name
	}
	return filepath.Join(O.dir, name)
}

// xtbRep is the input geometry written for one xtb calculation, and
// the gradient it produced, once Energy has been called.
type xtbRep struct {
	owner  *XTBHandle
	xyz    string
	grad   *v3.Matrix
	energy float64
}

// Release removes the input geometry file.
func (R *xtbRep) Release() {
	if R.owner == nil {
		return
	}
	os.Remove(R.xyz)
	R.owner = nil
	R.grad = nil
}

// Build writes the coordinates of mol (in Bohr) to an xyz file (in A) for xtb.
func (O *XTBHandle) Build(mol *chem.Molecule) (Representation, error) {
	if O.inputname == "" {
		O.inputname = "gochem"
	}
	if mol == nil || mol.Coords == nil {
		return nil, Error{ErrMissingCharges, XTB, O.inputname, "", []string{"Build"}, true}
	}
	coords := v3.Zeros(mol.Coords.NVecs())
	coords.Scale(chem.Bohr2A, mol.Coords)
	xyz := O.path(O.inputname + ".xyz")
	if err := chem.XYZFileWrite(xyz, coords, mol); err != nil {
		return nil, Error{ErrCantInput, XTB, O.inputname, err.Error(), []string{"chem.XYZFileWrite", "Build"}, true}
	}
	return &xtbRep{owner: O, xyz: xyz}, nil
}

func (O *XTBHandle) rep(rep Representation, caller string) (*xtbRep, error) {
	r, ok := rep.(*xtbRep)
	if !ok || r == nil || r.owner != O {
		return nil, Error{ErrBadRepr, XTB, O.inputname, "", []string{caller}, true}
	}
	return r, nil
}

// args returns the command line arguments for an energy+gradient calculation.
func (O *XTBHandle) args(charge, uhf int, Q *Calc) []string {
	args := []string{O.inputname + ".xyz", "--grad", "-c", strconv.Itoa(charge), "-u", strconv.Itoa(uhf)}
	if O.nCPU > 1 {
		args = append(args, "-P", strconv.Itoa(O.nCPU))
	}
	//Added new things to select a method in xtb
	switch {
	case Q.Method == "gfnff":
		args = append(args, "--gfnff")
	case isInString([]string{"gfn0", "gfn1", "gfn2"}, Q.Method):
		args = append(args, "--gfn", strings.TrimPrefix(Q.Method, "gfn"))
	default:
		args = append(args, "--gfn", "2") //default method
	}
	if Q.Dielectric > 0 && Q.Method != "gfn0" { //as of the current version, gfn0 doesn't support implicit solvation
		solvent, ok := dielectric2Solvent[int(Q.Dielectric)]
		if ok {
			args = append(args, "--alpb", solvent)
		}
	}
	switch {
	case Q.SCFTightness == 1:
		args = append(args, "--acc", "0.1")
	case Q.SCFTightness > 1:
		args = append(args, "--acc", "0.01")
	}
	return args
}

// Energy runs xtb on the geometry in rep and returns the energy in Hartree.
// xtb keeps its own wavefunction restart file, so the orbitals returned are empty.
// With GuessDefault the restart file is removed before running, with GuessOrbitals
// it is kept. If xtb ends abnormally, the energy returned is 0 and the error nil.
func (O *XTBHandle) Energy(rep Representation, mol *chem.Molecule, nalpha, nbeta int, Q *Calc) (float64, *Orbitals, error) {
	r, err := O.rep(rep, "Energy")
	if err != nil {
		return 0, nil, err
	}
	if Q == nil {
		Q = new(Calc)
	}
	if Q.Guess == GuessDefault {
		os.Remove(O.path("xtbrestart"))
	}
	os.Remove(O.path("gradient"))
	out, err := os.Create(O.path(O.inputname + ".out"))
	if err != nil {
		return 0, nil, Error{ErrNotRunning, XTB, O.inputname, err.Error(), []string{"os.Create", "Energy"}, true}
	}
	defer out.Close()
	args := O.args(mol.Charge(), nalpha-nbeta, Q)
	slog.Debug("Running xtb", "command", O.command, "args", strings.Join(args, " "), "dir", O.dir)
	command := exec.Command(O.command, args...)
	command.Dir = O.dir
	command.Stdout = out
	command.Stderr = out
	err = command.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		slog.Warn("xtb ended with an error", "input", O.inputname, "status", exitErr.ExitCode())
		return 0, &Orbitals{}, nil
	} else if err != nil {
		return 0, nil, Error{ErrNotRunning, XTB, O.inputname, err.Error(), []string{"exec.Run", "Energy"}, true}
	}
	if !O.normalTermination() {
		slog.Warn("xtb didn't terminate normally", "input", O.inputname)
		return 0, &Orbitals{}, nil
	}
	fin, err := os.Open(O.path("gradient"))
	if err != nil {
		return 0, nil, Error{ErrNoGradient, XTB, O.inputname, err.Error(), []string{"os.Open", "Energy"}, true}
	}
	defer fin.Close()
	energy, grad, err := readGradient(fin, mol.Len())
	if err != nil {
		return 0, nil, errDecorate(err, "Energy")
	}
	r.energy = energy
	r.grad = grad
	return energy, &Orbitals{}, nil
}

// Forces returns the forces from the gradient obtained by the last
// call to Energy with the same Representation.
func (O *XTBHandle) Forces(rep Representation, mol *chem.Molecule, nalpha, nbeta int, orbs *Orbitals, Q *Calc) (*v3.Matrix, error) {
	r, err := O.rep(rep, "Forces")
	if err != nil {
		return nil, err
	}
	if r.grad == nil || r.grad.NVecs() != mol.Len() {
		return nil, Error{ErrNoGradient, XTB, O.inputname, "Energy was not obtained for this geometry", []string{"Forces"}, true}
	}
	F := v3.Zeros(mol.Len())
	F.Scale(-1, r.grad)
	return F, nil
}

// readGradient reads a gradient file in Turbomole format, as written by xtb --grad,
// for natoms atoms. It returns the energy and the gradient of the last cycle in the file.
func readGradient(in io.Reader, natoms int) (float64, *v3.Matrix, error) {
	scanner := bufio.NewScanner(in)
	var energy float64
	var grad *v3.Matrix
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "cycle =") {
			continue
		}
		i := strings.Index(line, "energy =")
		if i < 0 {
			return 0, nil, Error{ErrNoEnergy, XTB, "gradient", line, []string{"readGradient"}, true}
		}
		fields := strings.Fields(line[i+len("energy ="):])
		if len(fields) == 0 {
			return 0, nil, Error{ErrNoEnergy, XTB, "gradient", line, []string{"readGradient"}, true}
		}
		e, err := parseFortranFloat(fields[0])
		if err != nil {
			return 0, nil, Error{ErrNoEnergy, XTB, "gradient", err.Error(), []string{"strconv.ParseFloat", "readGradient"}, true}
		}
		//the coordinates come first, we don't need them.
		for j := 0; j < natoms; j++ {
			if !scanner.Scan() {
				return 0, nil, Error{ErrNoGradient, XTB, "gradient", "file ended in the coordinates block", []string{"readGradient"}, true}
			}
		}
		g := v3.Zeros(natoms)
		for j := 0; j < natoms; j++ {
			if !scanner.Scan() {
				return 0, nil, Error{ErrNoGradient, XTB, "gradient", "file ended in the gradient block", []string{"readGradient"}, true}
			}
			fields := strings.Fields(scanner.Text())
			if len(fields) != 3 {
				return 0, nil, Error{ErrNoGradient, XTB, "gradient", fmt.Sprintf("malformed gradient line %q", scanner.Text()), []string{"readGradient"}, true}
			}
			for c, f := range fields {
				v, err := parseFortranFloat(f)
				if err != nil {
					return 0, nil, Error{ErrNoGradient, XTB, "gradient", err.Error(), []string{"strconv.ParseFloat", "readGradient"}, true}
				}
				g.Set(j, c, v)
			}
		}
		energy = e
		grad = g
	}
	if err := scanner.Err(); err != nil {
		return 0, nil, Error{ErrNoGradient, XTB, "gradient", err.Error(), []string{"bufio.Scanner", "readGradient"}, true}
	}
	if grad == nil {
		return 0, nil, Error{ErrNoGradient, XTB, "gradient", "no cycle found", []string{"readGradient"}, true}
	}
	return energy, grad, nil
}

// parseFortranFloat parses numbers that may use D as exponent mark.
func parseFortranFloat(s string) (float64, error) {
	s = strings.Replace(strings.Replace(s, "D", "E", 1), "d", "e", 1)
	return strconv.ParseFloat(s, 64)
}

// This checks that an xtb calculation has terminated normally
func (O *XTBHandle) normalTermination() bool {
	out := O.path(fmt.Sprintf("%s.out", O.inputname))
	if searchBackwards("normal termination of x", out) != "" || searchBackwards("abnormal termination of x", out) == "" {
		return true
	}
	return false
}

// search a file backwards, i.e., starting from the end, for a string. Returns the line that contains the string, or an empty string.
func searchBackwards(str, filename string) string {
	var ini int64 = 0
	var end int64 = 0
	first := true
	buf := make([]byte, 1)
	f, err := os.Open(filename)
	if err != nil {
		return ""
	}
	defer f.Close()
	var i int64 = 1
	for ; ; i++ {
		if _, err := f.Seek(-1*i, 2); err != nil {
			return ""
		}
		if _, err := f.Read(buf); err != nil {
			return ""
		}
		if buf[0] == byte('\n') && !first {
			first = true
		} else if buf[0] == byte('\n') && end == 0 {
			end = i
		} else if buf[0] == byte('\n') && ini == 0 {
			ini = i
			f.Seek(-1*(ini), 2)
			bufF := make([]byte, ini-end)
			f.Read(bufF)
			if strings.Contains(string(bufF), str) {
				return string(bufF)
			}
			end = 0
			ini = 0
		}
	}
}

var dielectric2Solvent = map[int]string{
	80: "h2o",
	5:  "chcl3",
	9:  "ch2cl2",
	21: "acetone",
	37: "acetonitrile",
	33: "methanol",
	2:  "toluene",
	7:  "thf",
	47: "dmso",
	38: "dmf",
}

// errDecorate is a helper function that decorates a qm Error with the caller's name
// before returning it. Other errors, including those from the chem package, are
// wrapped in a qm Error decorated with caller.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	e, ok := err.(Error)
	if !ok {
		return Error{err.Error(), "", "", "", []string{caller}, true}
	}
	e.deco = e.Decorate(caller)
	return e
}
