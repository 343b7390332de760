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
 *
 * */

//Package qm implements communication with the programs that supply energies and
//forces for a geometry optimization. The optimizer only sees the Builder and Handle
//interfaces, so the calculation settings are as separated as possible from the
//choice of program. Two handles are provided: a pairwise harmonic force field,
//useful for tests and for pre-optimizing, and the xtb semiempirical program.

package qm
