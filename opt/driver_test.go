/*
 * driver_test.go, part of gochemopt.
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
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"testing"

	chem "github.com/rmera/gochemopt"
	"github.com/rmera/gochemopt/qm"
	v3 "github.com/rmera/gochemopt/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func molecule(Te *testing.T, symbol string, coords ...float64) *chem.Molecule {
	c, err := v3.NewMatrix(coords)
	if err != nil {
		Te.Fatal(err)
	}
	ats := make([]*chem.Atom, c.NVecs())
	for i := range ats {
		if ats[i], err = chem.NewAtom(symbol); err != nil {
			Te.Fatal(err)
		}
	}
	mol, err := chem.NewMolecule(c, chem.NewTopology(0, 1, ats...))
	if err != nil {
		Te.Fatal(err)
	}
	return mol
}

type fakeRep struct{ released *int }

func (R fakeRep) Release() { *R.released++ }

// constantForce gives the same energy and forces for every geometry.
type constantForce struct {
	energy   float64
	force    [3]float64
	built    int
	released int
	err      error
}

func (C *constantForce) Build(mol *chem.Molecule) (qm.Representation, error) {
	C.built++
	return fakeRep{&C.released}, nil
}

func (C *constantForce) Energy(rep qm.Representation, mol *chem.Molecule, nalpha, nbeta int, Q *qm.Calc) (float64, *qm.Orbitals, error) {
	return C.energy, &qm.Orbitals{}, C.err
}

func (C *constantForce) Forces(rep qm.Representation, mol *chem.Molecule, nalpha, nbeta int, orbs *qm.Orbitals, Q *qm.Calc) (*v3.Matrix, error) {
	F := v3.Zeros(mol.Len())
	for i := 0; i < mol.Len(); i++ {
		F.SetRow(i, C.force[:])
	}
	return F, nil
}

// recorder keeps the settings each energy calculation got.
type recorder struct {
	*qm.HarmonicHandle
	guesses  []qm.GuessMode
	given    []*qm.Orbitals
	returned []*qm.Orbitals
	electr   [][2]int
}

func (R *recorder) Energy(rep qm.Representation, mol *chem.Molecule, nalpha, nbeta int, Q *qm.Calc) (float64, *qm.Orbitals, error) {
	R.guesses = append(R.guesses, Q.Guess)
	R.given = append(R.given, Q.Orbitals)
	R.electr = append(R.electr, [2]int{nalpha, nbeta})
	E, orbs, err := R.HarmonicHandle.Energy(rep, mol, nalpha, nbeta, Q)
	R.returned = append(R.returned, orbs)
	return E, orbs, err
}

func testOptions() Options {
	o := DefaultOptions()
	o.Logger = quiet
	return o
}

// A single atom with no force is already converged. With a constant force the
// second iteration has no gradient change, so the update can't be done.
func TestSingleAtom(Te *testing.T) {
	mol := molecule(Te, "He", 1, 2, 3)
	h := &constantForce{energy: -2.9}
	res, err := New(h, h, testOptions()).Run(mol)
	if err != nil {
		Te.Fatal(err)
	}
	if !res.Converged() || res.Iterations != 1 || !floats.Equal(mol.Coords.Flat(nil), []float64{1, 2, 3}) {
		Te.Errorf("Zero force: %+v %v", res, mol.Coords)
	}
	h = &constantForce{energy: -2.9, force: [3]float64{0.1, 0, 0}}
	res, err = New(h, h, testOptions()).Run(mol)
	if !errors.Is(err, DegenerateUpdate) {
		Te.Fatalf("Constant force gave %v", err)
	}
	if res.State != Failed || len(res.History) != 1 || res.History[0].Metrics.MaxForce != 0.1 {
		Te.Errorf("Wrong result after degenerate update: %+v", res)
	}
	if math.Abs(mol.Coords.At(0, 0)-1.1) > 1e-15 {
		Te.Errorf("Only the first step should have been taken: %v", mol.Coords)
	}
	if h.built != 2 || h.released != 2 {
		Te.Errorf("Representations built %d released %d", h.built, h.released)
	}
}

// TestHarmonicDimer optimizes two atoms joined by a spring.
func TestHarmonicDimer(Te *testing.T) {
	const k, r0 = 1.0, 1.4
	mol := molecule(Te, "H", 0, 0, 0, 1.6, 0, 0)
	h := &recorder{HarmonicHandle: qm.NewHarmonicHandle(qm.Bond{I: 0, J: 1, K: k, R0: r0})}
	o := testOptions()
	o.Thresholds = Thresholds{1e-4, 1e-4, 1e-4, 1e-4}
	o.Calc = &qm.Calc{Method: "springs", Guess: qm.GuessDefault}
	var seen int
	o.OnIteration = func(rec Record, m *chem.Molecule) {
		if rec.Iteration != seen {
			Te.Errorf("Iteration %d reported as %d", seen, rec.Iteration)
		}
		seen++
	}
	opt := New(h, h, o)
	res, err := opt.Run(mol)
	if err != nil {
		Te.Fatal(err)
	}
	if !res.Converged() || opt.State() != Converged || res.Iterations > 20 || seen != res.Iterations {
		Te.Fatalf("Didn't converge properly: %+v", res)
	}
	if d := mol.Coords.Dist(0, 1); math.Abs(d-r0) > 1e-4 {
		Te.Errorf("Final distance %v, expected %v", d, r0)
	}
	//along the bond coordinate the inverse Hessian is 1/2k.
	u := mat.NewVecDense(6, []float64{-1, 0, 0, 1, 0, 0})
	u.ScaleVec(1/math.Sqrt2, u)
	if v := 2 * mat.Inner(u, res.InvHessian, u); math.Abs(v-1/k) > 1e-6 {
		Te.Errorf("Inverse Hessian along the bond %v, expected %v", v, 1/k)
	}
	//warm start
	if h.guesses[0] != qm.GuessDefault || h.given[0] != nil {
		Te.Errorf("First calculation got guess %v %v", h.guesses[0], h.given[0])
	}
	for i := 1; i < len(h.guesses); i++ {
		if h.guesses[i] != qm.GuessOrbitals || h.given[i] != h.returned[i-1] {
			Te.Errorf("Calculation %d didn't start from the previous orbitals", i)
		}
	}
	if o.Calc.Guess != qm.GuessDefault || o.Calc.Orbitals != nil {
		Te.Errorf("Caller's settings changed: %+v", o.Calc)
	}
	if h.electr[0] != [2]int{1, 1} {
		Te.Errorf("Wrong electrons %v", h.electr[0])
	}
	energies := make([]float64, len(res.History))
	for i, r := range res.History {
		energies[i] = r.Energy
	}
	if energies[len(energies)-1] > energies[0] {
		Te.Errorf("Energy went up: %v", energies)
	}
}

func TestCallerGuess(Te *testing.T) {
	mol := molecule(Te, "H", 0, 0, 0, 1.5, 0, 0)
	h := &recorder{HarmonicHandle: qm.NewHarmonicHandle(qm.Bond{I: 0, J: 1, K: 1, R0: 1.4})}
	orbs := &qm.Orbitals{EA: []float64{-0.5}}
	o := testOptions()
	o.Calc = &qm.Calc{Guess: qm.GuessOrbitals, Orbitals: orbs}
	if _, err := New(h, h, o).Run(mol); err != nil {
		Te.Fatal(err)
	}
	if h.guesses[0] != qm.GuessOrbitals || h.given[0] != orbs {
		Te.Error("The caller's orbitals were not used in the first calculation")
	}
	if o.Calc.Orbitals != orbs {
		Te.Error("Caller's orbitals replaced")
	}
}

func TestNonConvergedEnergy(Te *testing.T) {
	mol := molecule(Te, "H", 0, 0, 0, 1.6, 0, 0)
	h := &constantForce{energy: 0, force: [3]float64{1, 1, 1}}
	res, err := New(h, h, testOptions()).Run(mol)
	if !errors.Is(err, OracleNonConvergence) {
		Te.Fatalf("Zero energy gave %v", err)
	}
	if len(res.History) != 0 || !floats.Equal(mol.Coords.Flat(nil), []float64{0, 0, 0, 1.6, 0, 0}) {
		Te.Errorf("Geometry changed or history recorded: %v %v", mol.Coords, res.History)
	}
	if h.released != h.built {
		Te.Errorf("Representation not released")
	}
}

func TestIterationBudget(Te *testing.T) {
	mol := molecule(Te, "H", 0, 0, 0, 3.0, 0, 0)
	h := qm.NewHarmonicHandle(qm.Bond{I: 0, J: 1, K: 1, R0: 1.4})
	o := testOptions()
	o.MaxIter = 1
	o.MaxStep = 0.1
	res, err := New(h, h, o).Run(mol)
	if !errors.Is(err, IterationBudgetExceeded) {
		Te.Fatalf("Expected the iteration budget to be exceeded, got %v", err)
	}
	if res.State != Failed || res.Iterations != 2 || len(res.History) != 2 {
		Te.Errorf("Wrong result %+v", res)
	}
	//the caller can continue from where it stopped
	o.MaxIter = 100
	o.MaxStep = 0.3
	res, err = New(h, h, o).Run(mol)
	if err != nil || !res.Converged() {
		Te.Errorf("Retry failed: %v", err)
	}
}

// The spring reaches its equilibrium with the first step, so the second
// evaluation converges. That evaluation is over a budget of one iteration.
func TestBudgetBoundary(Te *testing.T) {
	h := qm.NewHarmonicHandle(qm.Bond{I: 0, J: 1, K: 0.5, R0: 1.4})
	o := testOptions()
	o.MaxStep = 10
	o.MaxIter = 1
	mol := molecule(Te, "H", 0, 0, 0, 2.0, 0, 0)
	res, err := New(h, h, o).Run(mol)
	if !errors.Is(err, IterationBudgetExceeded) {
		Te.Fatalf("Expected the iteration budget to be exceeded, got %v", err)
	}
	if res.Iterations != 2 || res.State != Failed {
		Te.Errorf("Wrong result %+v", res)
	}
	if d := mol.Coords.Dist(0, 1); math.Abs(d-1.4) > 1e-12 {
		Te.Errorf("Distance %v after the first step, expected 1.4", d)
	}
	o.MaxIter = 2
	mol = molecule(Te, "H", 0, 0, 0, 2.0, 0, 0)
	res, err = New(h, h, o).Run(mol)
	if err != nil || !res.Converged() || res.Iterations != 2 {
		Te.Errorf("With MaxIter 2: %v %+v", err, res)
	}
}

func TestRunErrors(Te *testing.T) {
	mol := molecule(Te, "H", 0, 0, 0, 1.6, 0, 0)
	h := qm.NewHarmonicHandle(qm.Bond{I: 0, J: 1, K: 1, R0: 1.4})
	o := testOptions()
	o.MaxStep = 0
	if _, err := New(h, h, o).Run(mol); !errors.Is(err, InvalidConfiguration) {
		Te.Errorf("maxStep 0 gave %v", err)
	}
	o = testOptions()
	o.MaxIter = 0
	if _, err := New(h, h, o).Run(mol); !errors.Is(err, InvalidConfiguration) {
		Te.Errorf("MaxIter 0 gave %v", err)
	}
	o = testOptions()
	o.Multi = 2 //two electrons can't be a doublet
	if _, err := New(h, h, o).Run(mol); !errors.Is(err, InvalidConfiguration) {
		Te.Errorf("Multiplicity 2 gave %v", err)
	}
	boom := errors.New("boom")
	c := &constantForce{energy: -1, err: boom}
	if _, err := New(c, c, testOptions()).Run(mol); !errors.Is(err, OracleFailure) || !errors.Is(err, boom) {
		Te.Errorf("Failed oracle gave %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := New(h, h, testOptions()).RunContext(ctx, mol)
	if !errors.Is(err, Canceled) || !errors.Is(err, context.Canceled) || res.State != Failed {
		Te.Errorf("Canceled context gave %v", err)
	}
}

func TestTranslationOption(Te *testing.T) {
	mol := molecule(Te, "He", 0, 0, 0, 3, 0, 0)
	h := &constantForce{energy: -5, force: [3]float64{0.01, 0.02, 0}}
	o := testOptions()
	o.RemoveTranslation = true
	//a force equal on all atoms is a pure translation, so no step is taken,
	//and the next update has neither step nor gradient change.
	res, err := New(h, h, o).Run(mol)
	if !errors.Is(err, DegenerateUpdate) {
		Te.Fatalf("Expected a degenerate update, got %v", err)
	}
	if res.History[0].StepNorm != 0 || !floats.Equal(mol.Coords.Flat(nil), []float64{0, 0, 0, 3, 0, 0}) {
		Te.Errorf("Step with translation removed: %v %v", res.History[0].StepNorm, mol.Coords)
	}
}

func TestReport(Te *testing.T) {
	var buf bytes.Buffer
	m, _ := Evaluate([]float64{0.1, 0}, []float64{0.001, 0}, DefaultThresholds())
	if err := WriteIteration(&buf, 0, m, DefaultThresholds()); err != nil {
		Te.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"-----       GEOMETRY OPTIMIZATION Step     1            -----",
		"Convergence Criterion    Value        Threshold",
		"  Maximum Force          0.100000     0.000450  NO\n",
		"  Maximum Displacement   0.001000     0.001800  YES\n",
	} {
		if !strings.Contains(out, want) {
			Te.Errorf("Report lacks %q:\n%s", want, out)
		}
	}
	buf.Reset()
	mol := molecule(Te, "H", 0, 0, 0, 1.4, 0, 0, 0, 1.4, 0)
	if err := WriteFinal(&buf, mol); err != nil {
		Te.Fatal(err)
	}
	out = buf.String()
	if !strings.Contains(out, "OPTIMIZED GEOMETRY") || !strings.Contains(out, "Output Sequence") {
		Te.Fatalf("Wrong final report:\n%s", out)
	}
	table := strings.TrimSpace(out[strings.LastIndex(out, "------------------")+len("------------------"):])
	lines := strings.Split(table, "\n")
	if len(lines) != 2 || len(strings.Fields(lines[0])) != 5 || len(strings.Fields(lines[1])) != 1 {
		Te.Fatalf("Distances should be 5 per line:\n%s", table)
	}
	d, err := strconv.ParseFloat(strings.Fields(lines[0])[1], 64)
	if err != nil || math.Abs(d-1.4*chem.Bohr2A) > 1e-5 {
		Te.Errorf("Wrong distance %v %v", d, err)
	}
}
