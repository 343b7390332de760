/*
 * chem.go, part of gochemopt.
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
 * Gochem is developed at the laboratory for instruction in Swedish, Department of Chemistry,
 * University of Helsinki, Finland.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chem

import (
	"fmt"

	v3 "github.com/rmera/gochemopt/v3"
)

/**Note: Some functions here panic instead of returning errors. This is because they are "fundamental"
 * functions. If something goes wrong here, the program is most likely wrong and should
 * crash. Most panics are related to using the function on a nil object or trying to access out-of bounds
 * fields**/

// Atom contains the identity of an atom. The coordinates are kept separately, in a v3.Matrix.
type Atom struct {
	Name   string
	ID     int
	Symbol string
	Z      int     //nuclear charge
	Mass   float64 //in amu
	Charge float64 //partial charge, not used to count electrons.
}

// Copy returns a copy of the Atom object.
func (A *Atom) Copy() *Atom {
	if A == nil {
		panic("Attempted to copy a nil atom")
	}
	N := *A
	return &N
}

// NewAtom returns an atom with the given element symbol, filling the atomic number
// and mass from the element tables. It returns an error if the element is unknown.
func NewAtom(symbol string) (*Atom, error) {
	z, ok := symbolZ[symbol]
	if !ok {
		return nil, CError{fmt.Sprintf("Unknown element %q", symbol), []string{"NewAtom"}}
	}
	return &Atom{Name: symbol, Symbol: symbol, Z: z, Mass: symbolMass[symbol]}, nil
}

/*****Topology type***/

// Topology contains information about a molecule which is not expected to change
// during an optimization, i.e. everything except the coordinates.
type Topology struct {
	Atoms  []*Atom
	charge int
	multi  int
}

// NewTopology returns a topology with the given charge, multiplicity and atoms.
// A multiplicity smaller than 1 is replaced by 1.
func NewTopology(charge, multi int, ats ...*Atom) *Topology {
	top := new(Topology)
	top.Atoms = ats
	top.charge = charge
	top.SetMulti(multi)
	return top
}

/*Topology methods*/

// Charge gets the total charge of the topology
func (T *Topology) Charge() int {
	return T.charge
}

// Multi returns the multiplicity of the topology
func (T *Topology) Multi() int {
	return T.multi
}

// SetCharge sets the total charge of the topology to i
func (T *Topology) SetCharge(i int) {
	T.charge = i
}

// SetMulti sets the multiplicity of the topology to i
func (T *Topology) SetMulti(i int) {
	if i < 1 {
		i = 1
	}
	T.multi = i
}

// Atom returns the Atom corresponding to the index i
// of the Atom slice in the Topology. Panics if
// out of range.
func (T *Topology) Atom(i int) *Atom {
	if i >= T.Len() {
		panic("Topology: Requested Atom out of bounds")
	}
	return T.Atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// CopyAtoms returns a deep copy of the topology.
func (T *Topology) CopyAtoms() *Topology {
	Top := new(Topology)
	Top.Atoms = make([]*Atom, T.Len())
	for key, val := range T.Atoms {
		Top.Atoms[key] = val.Copy()
	}
	Top.charge = T.charge
	Top.multi = T.multi
	return Top
}

// Masses returns a slice of float64 with the masses of the atoms in the topology, or nil and an error if they have not been calculated
func (T *Topology) Masses() ([]float64, error) {
	mass := make([]float64, T.Len())
	for i := 0; i < T.Len(); i++ {
		thisatom := T.Atom(i)
		if thisatom.Mass == 0 {
			return nil, CError{fmt.Sprintf("Not all the masses have been obtained: %d %v", i, thisatom), []string{"Masses"}}
		}
		mass[i] = thisatom.Mass
	}
	return mass, nil
}

// Electrons returns the number of alpha and beta electrons for the atoms in A with the
// given total charge and spin multiplicity. The total number of electrons is the sum of the
// nuclear charges minus the charge; the alpha electrons are (nE+multi-1)/2.
// It returns an error if the multiplicity is not compatible with the number of electrons.
func Electrons(A Atomer, charge, multi int) (nalpha, nbeta int, err error) {
	if multi < 1 {
		return 0, 0, CError{fmt.Sprintf("Invalid multiplicity %d", multi), []string{"Electrons"}}
	}
	ne := -charge
	for i := 0; i < A.Len(); i++ {
		ne += A.Atom(i).Z
	}
	if ne < 0 || (ne+multi-1)%2 != 0 {
		return 0, 0, CError{fmt.Sprintf("Multiplicity %d incompatible with %d electrons", multi, ne), []string{"Electrons"}}
	}
	nalpha = (ne + multi - 1) / 2
	nbeta = ne - nalpha
	if nbeta < 0 {
		return 0, 0, CError{fmt.Sprintf("Multiplicity %d too high for %d electrons", multi, ne), []string{"Electrons"}}
	}
	return nalpha, nbeta, nil
}

/**Type Molecule**/

// Molecule contains the atoms of a molecule and one set of coordinates. The
// coordinates are meant to be changed in place, for instance, by a geometry optimization.
type Molecule struct {
	*Topology
	Coords *v3.Matrix
}

// NewMolecule makes a molecule with the topology top and the coordinates coords.
// It returns an error if either is nil or if they have different numbers of atoms.
func NewMolecule(coords *v3.Matrix, top *Topology) (*Molecule, error) {
	if top == nil {
		return nil, CError{"Supplied a nil Topology", []string{"NewMolecule"}}
	}
	if coords == nil {
		return nil, CError{"Supplied nil coordinates", []string{"NewMolecule"}}
	}
	mol := &Molecule{Topology: top, Coords: coords}
	if err := mol.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewMolecule")
	}
	return mol, nil
}

// Copy returns a deep copy of the molecule, including coordinates.
func (M *Molecule) Copy() *Molecule {
	coords := v3.Zeros(M.Coords.NVecs())
	coords.Copy(M.Coords)
	return &Molecule{Topology: M.CopyAtoms(), Coords: coords}
}

// Corrupted checks that the number of atoms and coordinates match.
func (M *Molecule) Corrupted() error {
	if M.Coords == nil || M.Topology == nil {
		return CError{"Molecule without coordinates or topology", []string{"Corrupted"}}
	}
	if M.Coords.NVecs() != M.Len() {
		return CError{fmt.Sprintf("Mismatched number of atoms (%d) and coordinates (%d)", M.Len(), M.Coords.NVecs()), []string{"Corrupted"}}
	}
	return nil
}
