/*
 * doc.go, part of gochemopt.
 *
 * Copyright 2021 Raul Mera <rmeraatusachdotcl>
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

/*
Package zxyz reads and writes zstd-compressed multi-frame XYZ trajectories,
such as the path followed by a geometry optimization.

A zxyz file is simply a multi-frame XYZ file compressed with zstd, so it can
be read by any program after

	zstd -d opt.zxyz -o opt.xyz

Each frame has the number of atoms, a comment line (the optimizer puts the
iteration and the energy there) and one line per atom with the element symbol
and the coordinates, in Angstrom.
*/
package zxyz
