/*
 * opt_test.go, part of gochemopt.
 *
 * Copyright 2013 Raul Mera <rmera@zinc>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 *
 *
 */

package opt

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TestSecant checks that the updated inverse Hessian maps the gradient change
// onto the step.
func TestSecant(Te *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for _, n := range []int{1, 2, 6, 15} {
		H := identity(n)
		for trial := 0; trial < 5; trial++ {
			dR := make([]float64, n)
			dGrad := make([]float64, n)
			for i := range dR {
				dR[i] = rnd.Float64() - 0.5
				dGrad[i] = rnd.Float64() - 0.5
			}
			if floats.Dot(dR, dGrad) == 0 {
				continue
			}
			if err := UpdateInverseHessian(dR, dGrad, H); err != nil {
				Te.Fatal(err)
			}
			got := mat.NewVecDense(n, nil)
			got.MulVec(H, mat.NewVecDense(n, dGrad))
			if !floats.EqualApprox(got.RawVector().Data, dR, 1e-9) {
				Te.Errorf("n=%d trial %d: H'dGrad=%v, dR=%v", n, trial, got.RawVector().Data, dR)
			}
		}
	}
}

func TestBFGSClosedForm(Te *testing.T) {
	//alpha=1, B is diag(0,1) and H' stays the identity.
	dR := mat.NewVecDense(2, []float64{1, 0})
	B := bfgsB(dR, mat.NewVecDense(2, []float64{1, 0}), 1)
	if !mat.EqualApprox(B, mat.NewDense(2, 2, []float64{0, 0, 0, 1}), 1e-15) {
		Te.Errorf("Wrong B %v", mat.Formatted(B))
	}
	H := identity(2)
	if err := UpdateInverseHessian([]float64{1, 0}, []float64{1, 0}, H); err != nil {
		Te.Fatal(err)
	}
	if !mat.EqualApprox(H, identity(2), 1e-15) {
		Te.Errorf("Wrong H' %v", mat.Formatted(H))
	}
	//alpha=2, B = [[0 -1/2] [0 1]], H' = [[3/4 -1/2] [-1/2 1]]
	B = bfgsB(dR, mat.NewVecDense(2, []float64{2, 1}), 2)
	if !mat.EqualApprox(B, mat.NewDense(2, 2, []float64{0, -0.5, 0, 1}), 1e-15) {
		Te.Errorf("Wrong B %v", mat.Formatted(B))
	}
	H = identity(2)
	if err := UpdateInverseHessian([]float64{1, 0}, []float64{2, 1}, H); err != nil {
		Te.Fatal(err)
	}
	if !mat.EqualApprox(H, mat.NewDense(2, 2, []float64{0.75, -0.5, -0.5, 1}), 1e-15) {
		Te.Errorf("Wrong H' %v", mat.Formatted(H))
	}
}

func TestBFGSErrors(Te *testing.T) {
	H := identity(2)
	err := UpdateInverseHessian([]float64{1, 0}, []float64{0, 1}, H)
	if !errors.Is(err, DegenerateUpdate) {
		Te.Errorf("Orthogonal vectors gave %v", err)
	}
	if !mat.Equal(H, identity(2)) {
		Te.Error("H changed by a failed update")
	}
	if err := updateInverseHessian([]float64{1, 0}, []float64{1e-9, 1}, H, 1e-6); !errors.Is(err, DegenerateUpdate) {
		Te.Errorf("Update under tolerance gave %v", err)
	}
	if err := UpdateInverseHessian([]float64{1, 0, 0}, []float64{1, 0}, H); KindOf(err) != DimensionMismatch {
		Te.Errorf("Mismatched vectors gave %v", err)
	}
	if err := UpdateInverseHessian([]float64{1, 0, 0}, []float64{1, 0, 0}, H); KindOf(err) != DimensionMismatch {
		Te.Errorf("Mismatched matrix gave %v", err)
	}
}

func TestStepVector(Te *testing.T) {
	H := identity(3)
	g := []float64{0.1, -0.05, 0.02}
	dR := make([]float64, 3)
	if err := StepVector(H, g, 0.3, dR); err != nil {
		Te.Fatal(err)
	}
	if !floats.Equal(dR, []float64{-0.1, 0.05, -0.02}) {
		Te.Errorf("Unscaled step should be -g, got %v", dR)
	}
	H = identity(2)
	dR = make([]float64, 2)
	if err := StepVector(H, []float64{3, 4}, 1, dR); err != nil {
		Te.Fatal(err)
	}
	if !floats.EqualApprox(dR, []float64{-0.6, -0.8}, 1e-15) {
		Te.Errorf("Wrong scaled step %v", dR)
	}
	if n := floats.Norm(dR, 2); math.Abs(n-1) > 1e-15 {
		Te.Errorf("Scaled step has norm %v", n)
	}
	for _, max := range []float64{0, -1} {
		if err := StepVector(H, []float64{3, 4}, max, dR); !errors.Is(err, InvalidConfiguration) {
			Te.Errorf("maxStep %v gave %v", max, err)
		}
	}
	if err := StepVector(H, []float64{3, 4, 5}, 1, dR); !errors.Is(err, DimensionMismatch) {
		Te.Errorf("Mismatched gradient gave %v", err)
	}
}

func TestEvaluate(Te *testing.T) {
	grad := []float64{3, -4}
	step := []float64{0.1, -0.1}
	m, err := Evaluate(grad, step, DefaultThresholds())
	if err != nil {
		Te.Fatal(err)
	}
	if m.MaxForce != 4 || math.Abs(m.RMSForce-math.Sqrt(12.5)) > 1e-14 || m.MaxDisp != 0.1 || math.Abs(m.RMSDisp-0.1) > 1e-15 {
		Te.Errorf("Wrong metrics %+v", m)
	}
	if m.Converged || m.MaxForceOK || m.RMSDispOK {
		Te.Errorf("Should not converge: %+v", m)
	}
	//boundary: values equal to the thresholds pass.
	th := Thresholds{m.MaxForce, m.RMSForce, m.MaxDisp, m.RMSDisp}
	m, _ = Evaluate(grad, step, th)
	if !m.Converged {
		Te.Errorf("Metrics equal to thresholds should converge: %+v", m)
	}
	tight := []Thresholds{th, th, th, th}
	tight[0].MaxForce = math.Nextafter(th.MaxForce, 0)
	tight[1].RMSForce = math.Nextafter(th.RMSForce, 0)
	tight[2].MaxDisp = math.Nextafter(th.MaxDisp, 0)
	tight[3].RMSDisp = math.Nextafter(th.RMSDisp, 0)
	for i, t := range tight {
		m, _ := Evaluate(grad, step, t)
		if m.Converged {
			Te.Errorf("Criterion %d just over its threshold, still converged: %+v", i, m)
		}
	}
	if _, err := Evaluate(grad, step[:1], th); !errors.Is(err, DimensionMismatch) {
		Te.Errorf("Mismatched vectors gave %v", err)
	}
	if _, err := Evaluate(nil, nil, th); !errors.Is(err, DimensionMismatch) {
		Te.Errorf("Empty vectors gave %v", err)
	}
}

func TestRemoveTranslation(Te *testing.T) {
	dR := []float64{1, 2, 3, 3, 4, 5}
	if err := RemoveTranslation(dR); err != nil {
		Te.Fatal(err)
	}
	if !floats.EqualApprox(dR, []float64{-1, -1, -1, 1, 1, 1}, 1e-15) {
		Te.Errorf("Wrong result %v", dR)
	}
	for axis := 0; axis < 3; axis++ {
		if s := dR[axis] + dR[axis+3]; math.Abs(s) > 1e-15 {
			Te.Errorf("Axis %d still has a net displacement %v", axis, s)
		}
	}
	if err := RemoveTranslation([]float64{1, 2, 3, 4}); !errors.Is(err, DimensionMismatch) {
		Te.Errorf("Length 4 gave %v", err)
	}
}

func TestErrorKinds(Te *testing.T) {
	cause := errors.New("cause")
	err := errDecorate(wrapError(OracleFailure, cause, "inner"), "outer")
	if !errors.Is(err, OracleFailure) || !errors.Is(err, cause) || errors.Is(err, Canceled) {
		Te.Errorf("Wrong matching for %v", err)
	}
	var e Error
	if !errors.As(err, &e) || len(e.deco) != 2 || !e.Critical() {
		Te.Errorf("Wrong decoration %v", e.deco)
	}
	if KindOf(errors.New("other")) != 0 || KindOf(IterationBudgetExceeded) != IterationBudgetExceeded {
		Te.Error("KindOf failed")
	}
	if err := maybe(func() { panic("no memory") }); !errors.Is(err, AllocationFailure) {
		Te.Errorf("Panic gave %v", err)
	}
}
