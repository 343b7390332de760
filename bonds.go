/*
 * bonds.go, part of gochem.
 *
 *
 * Copyright 2021 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package chem

import (
	"fmt"
	"sort"

	v3 "github.com/rmera/gochemopt/v3"
)

// constants from DOI:10.1186/1758-2946-3-33, in Angstrom
const (
	tooclose = 0.63
	bondtol  = 0.45
)

// Bond is a covalent bond between the atoms with indexes I and J, I<J.
// Dist is the distance between them and Eq the sum of their covalent radii, both
// in the units of the coordinates used to find the bond.
type Bond struct {
	I, J int
	Dist float64
	Eq   float64
}

// AssignBonds finds the bonds in a molecule based on a simple distance
// criterion, similar to that described in DOI:10.1186/1758-2946-3-33.
// factor converts the units of coords to Angstrom (use 1 for Angstrom, Bohr2A for Bohr).
// Atoms with more bonds than their element allows keep only the shortest ones.
// It is quadratic in the number of atoms, which is fine for the molecules
// one optimizes, not for proteins.
func AssignBonds(coords *v3.Matrix, mol Atomer, factor float64) ([]Bond, error) {
	tot := mol.Len()
	if coords.NVecs() != tot {
		return nil, CError{fmt.Sprintf("%d coordinates for %d atoms", coords.NVecs(), tot), []string{"AssignBonds"}}
	}
	perAtom := make([][]int, tot) //indexes in bonds
	bonds := make([]Bond, 0, tot)
	for i := 0; i < tot; i++ {
		cov1, ok := symbolCovrad[mol.Atom(i).Symbol]
		if !ok {
			return nil, CError{fmt.Sprintf("Couldn't find the covalent radius for %s %d", mol.Atom(i).Symbol, i), []string{"AssignBonds"}}
		}
		for j := i + 1; j < tot; j++ {
			cov2, ok := symbolCovrad[mol.Atom(j).Symbol]
			if !ok {
				return nil, CError{fmt.Sprintf("Couldn't find the covalent radius for %s %d", mol.Atom(j).Symbol, j), []string{"AssignBonds"}}
			}
			d := coords.Dist(i, j) * factor
			if d < cov1+cov2+bondtol && d > tooclose {
				perAtom[i] = append(perAtom[i], len(bonds))
				perAtom[j] = append(perAtom[j], len(bonds))
				bonds = append(bonds, Bond{I: i, J: j, Dist: d / factor, Eq: (cov1 + cov2) / factor})
			}
		}
	}
	//Now we check that no atom has too many bonds.
	removed := make([]bool, len(bonds))
	for i := 0; i < tot; i++ {
		max := symbolMaxBonds[mol.Atom(i).Symbol]
		if max == 0 {
			continue
		}
		alive := make([]int, 0, len(perAtom[i]))
		for _, b := range perAtom[i] {
			if !removed[b] {
				alive = append(alive, b)
			}
		}
		sort.Slice(alive, func(k, l int) bool { return bonds[alive[k]].Dist < bonds[alive[l]].Dist })
		for _, b := range alive[min(max, len(alive)):] {
			removed[b] = true //the longest ones
		}
	}
	ret := make([]Bond, 0, len(bonds))
	for i, b := range bonds {
		if !removed[i] {
			ret = append(ret, b)
		}
	}
	return ret, nil
}
