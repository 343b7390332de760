/*
 * bfgs.go, part of gochemopt.
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package opt

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// UpdateInverseHessian applies one BFGS update to the approximate inverse Hessian H,
// in place, given the step dR taken and the change in gradient dGrad it produced.
// The new H satisfies H*dGrad = dR. With a = dR.dGrad and B = I - dR dGrad^T/a,
//
//	H' = B H B^T + dR dR^T/a
//
// If a is 0 the update is not defined, and an Error of kind DegenerateUpdate is
// returned, with H untouched. Symmetry and positive-definiteness of H are not enforced.
func UpdateInverseHessian(dR, dGrad []float64, H *mat.Dense) error {
	return updateInverseHessian(dR, dGrad, H, 0)
}

// updateInverseHessian is UpdateInverseHessian that also fails when |a| <= tol.
func updateInverseHessian(dR, dGrad []float64, H *mat.Dense, tol float64) error {
	n := len(dR)
	if H == nil {
		return newError(DimensionMismatch, "nil inverse Hessian", "UpdateInverseHessian")
	}
	r, c := H.Dims()
	if n == 0 || len(dGrad) != n || r != n || c != n {
		return newError(DimensionMismatch, fmt.Sprintf("step %d, gradient change %d, inverse Hessian %dx%d", n, len(dGrad), r, c), "UpdateInverseHessian")
	}
	alpha := floats.Dot(dR, dGrad)
	if math.Abs(alpha) <= tol || math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return newError(DegenerateUpdate, fmt.Sprintf("dR.dGrad = %g", alpha), "UpdateInverseHessian")
	}
	vR := mat.NewVecDense(n, dR)
	B := bfgsB(vR, mat.NewVecDense(n, dGrad), alpha)
	var BH, Hp mat.Dense
	BH.Mul(B, H)
	Hp.Mul(&BH, B.T())
	Hp.RankOne(&Hp, 1/alpha, vR, vR)
	H.Copy(&Hp)
	return nil
}

// bfgsB returns I - dR dGrad^T/alpha.
func bfgsB(dR, dGrad mat.Vector, alpha float64) *mat.Dense {
	n := dR.Len()
	B := identity(n)
	B.RankOne(B, -1/alpha, dR, dGrad)
	return B
}

// identity returns a new n x n identity matrix.
func identity(n int) *mat.Dense {
	I := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		I.Set(i, i, 1)
	}
	return I
}
