/*
 * doc.go, part of gochemopt.
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

/*
Package chem is the main package of gochemopt. It provides atom and molecule structures,
reading and writing of XYZ files, electron counting and a few geometric helpers
needed to set up and report molecular geometry optimizations.

	**gochemopt Capabilities**

	Reads/writes XYZ files, single and multi-frame.

	Counts alpha and beta electrons from the charge and multiplicity.

	Finds covalent bonds from interatomic distances.

	Molecules keep their coordinates in a v3.Matrix which can be changed in place,
	so an optimizer can move the atoms.

	Quasi-Newton (BFGS) geometry optimization, in the opt package, with energies
	and forces from an external program (package qm).

	Compressed optimization trajectories (package traj/zxyz) and
	convergence plots (package chemplot).

*/
package chem
