/*
 * step.go, part of gochemopt.
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

package opt

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	v3 "github.com/rmera/gochemopt/v3"
)

// StepVector puts in dR the Newton step -H*grad. If the norm of the step is larger
// than maxStep, the step is scaled down to a norm of maxStep, keeping its direction.
// maxStep must be positive.
func StepVector(H *mat.Dense, grad []float64, maxStep float64, dR []float64) error {
	if maxStep <= 0 {
		return newError(InvalidConfiguration, fmt.Sprintf("maximum step size must be positive, got %g", maxStep), "StepVector")
	}
	n := len(grad)
	if H == nil {
		return newError(DimensionMismatch, "nil inverse Hessian", "StepVector")
	}
	r, c := H.Dims()
	if n == 0 || len(dR) != n || r != n || c != n {
		return newError(DimensionMismatch, fmt.Sprintf("gradient %d, step %d, inverse Hessian %dx%d", n, len(dR), r, c), "StepVector")
	}
	step := mat.NewVecDense(n, dR)
	step.MulVec(H, mat.NewVecDense(n, grad))
	floats.Scale(-1, dR)
	norm := floats.Norm(dR, 2)
	if norm > maxStep {
		floats.Scale(maxStep/norm, dR)
	}
	return nil
}

// RemoveTranslation subtracts from each x,y,z triplet of dR the average triplet,
// so the step doesn't move the center of the molecule.
func RemoveTranslation(dR []float64) error {
	if len(dR)%3 != 0 {
		return newError(DimensionMismatch, fmt.Sprintf("length %d not a multiple of 3", len(dR)), "RemoveTranslation")
	}
	if len(dR) == 0 {
		return nil
	}
	m, err := v3.NewMatrix(dR) //shares dR
	if err != nil {
		return wrapError(DimensionMismatch, err, "RemoveTranslation")
	}
	m.SubVec(m, m.Centroid())
	return nil
}
