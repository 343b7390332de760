/*
 * geometric.go, part of gochemopt.
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

package chem

import v3 "github.com/rmera/gochemopt/v3"

// DistanceTable returns the lower triangle, diagonal included, of the matrix of interatomic
// distances for coords, row by row: d(0,0), d(1,0), d(1,1), d(2,0)...
// The distances are multiplied by factor (use Bohr2A to go from Bohr to Angstrom, or 1).
func DistanceTable(coords *v3.Matrix, factor float64) []float64 {
	n := coords.NVecs()
	ret := make([]float64, 0, n*(n+1)/2)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			ret = append(ret, coords.Dist(i, j)*factor)
		}
	}
	return ret
}

// RemoveCentroid translates coords in place so their centroid is at the origin.
func RemoveCentroid(coords *v3.Matrix) {
	c := coords.Centroid()
	coords.SubVec(coords, c)
}
