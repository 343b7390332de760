/*
 * harmonic.go, part of gochemopt.
 *
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
 *
 */

package qm

import (
	"fmt"
	"math"

	chem "github.com/rmera/gochemopt"
	v3 "github.com/rmera/gochemopt/v3"
)

// Bond is a harmonic spring between atoms I and J (0-based), with force constant K
// (Hartree/Bohr^2) and equilibrium distance R0 (Bohr).
type Bond struct {
	I, J  int
	K, R0 float64
}

// HarmonicHandle obtains energies and forces from a set of harmonic springs,
// E = Offset + sum(K/2 (r-R0)^2). It needs no external program.
// Offset should not make the energy exactly zero, as that is
// the signal for a failed calculation.
type HarmonicHandle struct {
	Bonds  []Bond
	Offset float64
}

// NewHarmonicHandle returns a handle with the given bonds and an energy offset of -1 Hartree.
func NewHarmonicHandle(bonds ...Bond) *HarmonicHandle {
	return &HarmonicHandle{Bonds: bonds, Offset: -1.0}
}

// CovalentBonds returns a spring with force constant k for each covalent bond in mol,
// which coordinates must be in Bohr. The equilibrium distance of each spring is the
// sum of the covalent radii of its atoms.
func CovalentBonds(mol *chem.Molecule, k float64) ([]Bond, error) {
	cb, err := chem.AssignBonds(mol.Coords, mol, chem.Bohr2A)
	if err != nil {
		return nil, errDecorate(err, "CovalentBonds")
	}
	if len(cb) == 0 {
		return nil, Error{ErrBadBond, Harmonic, "", "no covalent bonds found", []string{"CovalentBonds"}, true}
	}
	bonds := make([]Bond, len(cb))
	for i, v := range cb {
		bonds[i] = Bond{I: v.I, J: v.J, K: k, R0: v.Eq}
	}
	return bonds, nil
}

// harmonicRep holds the bond vectors for one geometry.
type harmonicRep struct {
	owner *HarmonicHandle
	vecs  [][3]float64 //r_i - r_j for each bond
	dists []float64
}

func (R *harmonicRep) Release() {
	R.owner = nil
	R.vecs = nil
	R.dists = nil
}

// Build computes the bond vectors for the current coordinates of mol.
func (O *HarmonicHandle) Build(mol *chem.Molecule) (Representation, error) {
	if mol == nil || mol.Coords == nil {
		return nil, Error{ErrMissingCharges, Harmonic, "", "", []string{"Build"}, true}
	}
	n := mol.Coords.NVecs()
	rep := &harmonicRep{owner: O, vecs: make([][3]float64, len(O.Bonds)), dists: make([]float64, len(O.Bonds))}
	for k, b := range O.Bonds {
		if b.I == b.J || b.I < 0 || b.J < 0 || b.I >= n || b.J >= n {
			return nil, Error{ErrBadBond, Harmonic, "", fmt.Sprintf("bond %d: %d-%d with %d atoms", k, b.I, b.J, n), []string{"Build"}, true}
		}
		var d2 float64
		for c := 0; c < 3; c++ {
			rep.vecs[k][c] = mol.Coords.At(b.I, c) - mol.Coords.At(b.J, c)
			d2 += rep.vecs[k][c] * rep.vecs[k][c]
		}
		rep.dists[k] = math.Sqrt(d2)
		if rep.dists[k] == 0 {
			return nil, Error{ErrBadBond, Harmonic, "", fmt.Sprintf("atoms %d and %d overlap", b.I, b.J), []string{"Build"}, true}
		}
	}
	return rep, nil
}

func (O *HarmonicHandle) rep(rep Representation, caller string) (*harmonicRep, error) {
	r, ok := rep.(*harmonicRep)
	if !ok || r == nil || r.owner != O {
		return nil, Error{ErrBadRepr, Harmonic, "", "", []string{caller}, true}
	}
	return r, nil
}

// Energy returns the energy of the springs. The electron numbers and the
// calculation settings are ignored, and the orbitals returned are empty.
func (O *HarmonicHandle) Energy(rep Representation, mol *chem.Molecule, nalpha, nbeta int, Q *Calc) (float64, *Orbitals, error) {
	r, err := O.rep(rep, "Energy")
	if err != nil {
		return 0, nil, err
	}
	E := O.Offset
	for k, b := range O.Bonds {
		d := r.dists[k] - b.R0
		E += 0.5 * b.K * d * d
	}
	return E, &Orbitals{}, nil
}

// Forces returns minus the gradient of the spring energy for each atom of mol.
func (O *HarmonicHandle) Forces(rep Representation, mol *chem.Molecule, nalpha, nbeta int, orbs *Orbitals, Q *Calc) (*v3.Matrix, error) {
	r, err := O.rep(rep, "Forces")
	if err != nil {
		return nil, err
	}
	F := v3.Zeros(mol.Len())
	for k, b := range O.Bonds {
		//dE/dr_i = K (d-R0) (r_i-r_j)/d
		f := -b.K * (r.dists[k] - b.R0) / r.dists[k]
		for c := 0; c < 3; c++ {
			F.Set(b.I, c, F.At(b.I, c)+f*r.vecs[k][c])
			F.Set(b.J, c, F.At(b.J, c)-f*r.vecs[k][c])
		}
	}
	return F, nil
}
