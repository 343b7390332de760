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
 */

/*
Package opt optimizes molecular geometries with a quasi-Newton (BFGS) method.

The energy and forces at each geometry come from a qm.Handle, which is treated
as a black box. At each iteration the optimizer builds the geometry-dependent
representation, obtains the energy and the forces, updates the approximate inverse
Hessian with the last step and the change in the gradient, and takes a Newton step
no longer than Options.MaxStep. It stops when the largest and the RMS force and
displacement are all not greater than their thresholds.

All quantities are in atomic units: Hartree and Bohr.

The building blocks (UpdateInverseHessian, StepVector, Evaluate and RemoveTranslation)
are exported, so they can be used with other drivers.

Every failure is returned as an Error, which Kind can be checked with errors.Is:

	res, err := opt.New(handle, handle, opt.DefaultOptions()).Run(mol)
	if errors.Is(err, opt.IterationBudgetExceeded) {
		//res.History has what happened so far.
	}
*/
package opt
