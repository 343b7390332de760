/*
 * qm.go, part of gochemopt.
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
 * Gochem is developed at the laboratory for instruction in Swedish, Department of Chemistry,
 * University of Helsinki, Finland.
 *
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package qm

import (
	"fmt"
	"strings"

	chem "github.com/rmera/gochemopt"
	v3 "github.com/rmera/gochemopt/v3"
	"gonum.org/v1/gonum/mat"
)

// Representation is whatever a program needs that depends on the
// current geometry (basis functions placed on the atoms, input files...).
// It is built for each geometry and released before the next one.
type Representation interface {
	Release()
}

// Builder builds the geometry-dependent Representation for a molecule.
// Coordinates are in Bohr.
type Builder interface {
	Build(mol *chem.Molecule) (Representation, error)
}

// Handle allows to obtain energies and forces from different programs.
// All quantities are in atomic units (Hartree, Bohr).
type Handle interface {

	//Energy returns the total energy for mol, with nalpha and nbeta electrons,
	//and the orbitals obtained. An energy of exactly 0.0 means that the calculation
	//did not converge. The error is reserved for failures to run the calculation at all.
	Energy(rep Representation, mol *chem.Molecule, nalpha, nbeta int, Q *Calc) (float64, *Orbitals, error)

	//Forces returns the forces on each atom (one x,y,z row per atom) for the
	//orbitals previously obtained with Energy.
	Forces(rep Representation, mol *chem.Molecule, nalpha, nbeta int, orbs *Orbitals, Q *Calc) (*v3.Matrix, error)
}

// GuessMode selects the initial guess for the calculation.
type GuessMode int

const (
	GuessDefault  GuessMode = iota //whatever the program does by default
	GuessOrbitals                  //start from the orbitals in Calc.Orbitals
)

func (G GuessMode) String() string {
	switch G {
	case GuessDefault:
		return "default"
	case GuessOrbitals:
		return "orbitals"
	}
	return fmt.Sprintf("GuessMode(%d)", int(G))
}

// ParseGuess returns the GuessMode named by s ("default" or "orbitals").
func ParseGuess(s string) (GuessMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return GuessDefault, nil
	case "orbitals", "read", "moread":
		return GuessOrbitals, nil
	}
	return GuessDefault, Error{ErrUnknownGuess, "", "", s, []string{"ParseGuess"}, true}
}

// Orbitals contains molecular orbital coefficients and energies for both spins.
// Programs that don't expose their orbitals return an Orbitals with nil fields, and
// keep what they need to restart (if anything) themselves.
type Orbitals struct {
	CA, CB *mat.Dense
	EA, EB []float64
}

// Calc contains the settings for a calculation.
type Calc struct {
	Method       string
	Guess        GuessMode //initial guess
	Orbitals     *Orbitals //orbitals for the GuessOrbitals guess
	SCFTightness int
	Dielectric   float64 //implicit solvent, 0 means vacuum
	Memory       int     //Max memory to be used in MB (the effect depends on the QM program)
}

// WithGuess returns a copy of Q with the given guess and orbitals.
// Q itself is not changed.
func (Q *Calc) WithGuess(guess GuessMode, orbs *Orbitals) *Calc {
	ret := new(Calc)
	if Q != nil {
		*ret = *Q
	}
	ret.Guess = guess
	ret.Orbitals = orbs
	return ret
}

// WorkSet is a builder and a handle, as most programs provide both.
type WorkSet interface {
	Builder
	Handle
}

//Utilities here

// isInString returns true if test is in container, false otherwise.
func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
