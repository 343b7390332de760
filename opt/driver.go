/*
 * driver.go, part of gochemopt.
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

package opt

import (
	"context"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	chem "github.com/rmera/gochemopt"
	"github.com/rmera/gochemopt/qm"
)

// State is the stage in which an optimization is.
type State int

const (
	Initializing State = iota
	IteratingPreOracle
	AwaitingEnergy
	AwaitingForces
	UpdatingModel
	Converged
	Failed
)

func (S State) String() string {
	switch S {
	case Initializing:
		return "initializing"
	case IteratingPreOracle:
		return "iterating"
	case AwaitingEnergy:
		return "awaiting energy"
	case AwaitingForces:
		return "awaiting forces"
	case UpdatingModel:
		return "updating model"
	case Converged:
		return "converged"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(S))
}

// Record is what happened in one iteration.
type Record struct {
	Iteration int //0-based
	Energy    float64
	Metrics   Metrics
	StepNorm  float64
}

// Result is the outcome of an optimization. It is returned also when
// the optimization fails, with whatever was done until then.
type Result struct {
	State      State
	Iterations int //number of completed iterations
	Energy     float64
	History    []Record
	Gradient   []float64  //gradient at the last evaluated geometry
	InvHessian *mat.Dense //approximate inverse Hessian after the last update
}

// Converged returns true if the optimization converged.
func (R *Result) Converged() bool {
	return R != nil && R.State == Converged
}

// Optimizer runs BFGS geometry optimizations with energies and forces
// from a qm.Handle.
type Optimizer struct {
	builder qm.Builder
	handle  qm.Handle
	opts    Options
	log     *slog.Logger
	state   State
}

// New returns an optimizer which builds the representation of each geometry with
// builder and gets energies and forces from handle. opts is copied.
func New(builder qm.Builder, handle qm.Handle, opts Options) *Optimizer {
	return &Optimizer{builder: builder, handle: handle, opts: opts, log: opts.logger()}
}

// State returns the current state of the optimizer.
func (O *Optimizer) State() State {
	return O.state
}

func (O *Optimizer) setState(s State) {
	O.state = s
	O.log.Debug("optimizer state", "state", s.String())
}

// buffers are the working vectors and matrices of one optimization.
type buffers struct {
	H        *mat.Dense
	grad     []float64
	prevGrad []float64
	dGrad    []float64
	step     []float64
	prevStep []float64
}

// allocate returns the buffers for n degrees of freedom. A panic while
// allocating becomes an AllocationFailure error.
func allocate(n int) (b *buffers, err error) {
	err = maybe(func() {
		b = &buffers{
			H:        identity(n),
			grad:     make([]float64, n),
			prevGrad: make([]float64, n),
			dGrad:    make([]float64, n),
			step:     make([]float64, n),
			prevStep: make([]float64, n),
		}
	})
	return b, err
}

// maybe runs fn and returns any panic it produces as an AllocationFailure.
func maybe(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newError(AllocationFailure, fmt.Sprint(r), "allocate")
		}
	}()
	fn()
	return nil
}

// Run optimizes the geometry of mol, which coordinates must be in Bohr and are
// changed in place. See RunContext.
func (O *Optimizer) Run(mol *chem.Molecule) (*Result, error) {
	return O.RunContext(context.Background(), mol)
}

// RunContext optimizes the geometry of mol, in place, until convergence or failure.
// The context is checked before each iteration; an energy or force calculation that
// already started is not interrupted.
// A non-nil Result is always returned, with the history up to the point the optimization stopped.
// The error, if not nil, is an Error, and its Kind can be checked with errors.Is.
func (O *Optimizer) RunContext(ctx context.Context, mol *chem.Molecule) (*Result, error) {
	O.setState(Initializing)
	res := &Result{State: Initializing}
	fail := func(err error) (*Result, error) {
		O.setState(Failed)
		res.State = Failed
		O.log.Error("geometry optimization failed", "iteration", res.Iterations, "error", err)
		return res, err
	}
	if err := O.opts.validate(); err != nil {
		return fail(errDecorate(err, "Run"))
	}
	if O.builder == nil || O.handle == nil {
		return fail(newError(InvalidConfiguration, "nil builder or handle", "Run"))
	}
	if mol == nil || mol.Len() == 0 {
		return fail(newError(InvalidConfiguration, "no atoms to optimize", "Run"))
	}
	if err := mol.Corrupted(); err != nil {
		return fail(wrapError(DimensionMismatch, err, "Run"))
	}
	multi := O.opts.Multi
	if multi == 0 {
		multi = mol.Multi()
	}
	nalpha, nbeta, err := chem.Electrons(mol, mol.Charge(), multi)
	if err != nil {
		return fail(wrapError(InvalidConfiguration, err, "Run"))
	}
	b, err := allocate(3 * mol.Len())
	if err != nil {
		return fail(err)
	}
	res.InvHessian = b.H
	res.Gradient = b.grad
	var orbs *qm.Orbitals
	for it := 0; ; it++ {
		if err := ctx.Err(); err != nil {
			return fail(wrapError(Canceled, err, "Run"))
		}
		O.setState(IteratingPreOracle)
		rec, neworbs, err := O.iterate(it, mol, nalpha, nbeta, orbs, b)
		if err != nil {
			return fail(err)
		}
		orbs = neworbs
		res.History = append(res.History, rec)
		res.Energy = rec.Energy
		res.Iterations = it + 1
		O.log.Info("optimization step", "iteration", it+1, "energy", rec.Energy,
			"maxForce", rec.Metrics.MaxForce, "rmsForce", rec.Metrics.RMSForce,
			"maxDisp", rec.Metrics.MaxDisp, "rmsDisp", rec.Metrics.RMSDisp,
			"converged", rec.Metrics.Converged)
		if O.opts.OnIteration != nil {
			O.opts.OnIteration(rec, mol)
		}
		//the budget is checked first, so evaluation MaxIter+1 fails even if it converged.
		if res.Iterations > O.opts.MaxIter {
			return fail(newError(IterationBudgetExceeded, fmt.Sprintf("not converged after %d iterations (max %d)", res.Iterations, O.opts.MaxIter), "Run"))
		}
		if rec.Metrics.Converged {
			O.setState(Converged)
			res.State = Converged
			return res, nil
		}
	}
}

// calc returns the settings for the calculation in iteration it.
// The first one uses the caller's guess, the others start from the previous orbitals.
func (O *Optimizer) calc(it int, orbs *qm.Orbitals) *qm.Calc {
	if it == 0 {
		if O.opts.Calc == nil {
			return new(qm.Calc)
		}
		return O.opts.Calc.WithGuess(O.opts.Calc.Guess, O.opts.Calc.Orbitals)
	}
	return O.opts.Calc.WithGuess(qm.GuessOrbitals, orbs)
}

// iterate performs one optimization iteration, moving mol.
func (O *Optimizer) iterate(it int, mol *chem.Molecule, nalpha, nbeta int, prevorbs *qm.Orbitals, b *buffers) (Record, *qm.Orbitals, error) {
	rec := Record{Iteration: it}
	rep, err := O.builder.Build(mol)
	if err != nil {
		return rec, nil, wrapError(OracleFailure, err, "iterate")
	}
	defer rep.Release()
	Q := O.calc(it, prevorbs)

	O.setState(AwaitingEnergy)
	E, orbs, err := O.handle.Energy(rep, mol, nalpha, nbeta, Q)
	if err != nil {
		return rec, nil, wrapError(OracleFailure, err, "iterate")
	}
	if E == 0.0 {
		return rec, nil, newError(OracleNonConvergence, fmt.Sprintf("at iteration %d", it+1), "iterate")
	}
	rec.Energy = E

	O.setState(AwaitingForces)
	F, err := O.handle.Forces(rep, mol, nalpha, nbeta, orbs, Q)
	if err != nil {
		return rec, nil, wrapError(OracleFailure, err, "iterate")
	}
	if F == nil || F.NVecs() != mol.Len() {
		return rec, nil, newError(DimensionMismatch, "forces don't match the number of atoms", "iterate")
	}

	O.setState(UpdatingModel)
	F.Flat(b.grad)
	floats.Scale(-1, b.grad)
	if it > 0 {
		floats.SubTo(b.dGrad, b.grad, b.prevGrad)
		if err := updateInverseHessian(b.prevStep, b.dGrad, b.H, O.opts.DegeneracyTol); err != nil {
			return rec, nil, errDecorate(err, "iterate")
		}
	}
	if err := StepVector(b.H, b.grad, O.opts.MaxStep, b.step); err != nil {
		return rec, nil, errDecorate(err, "iterate")
	}
	if O.opts.RemoveTranslation {
		if err := RemoveTranslation(b.step); err != nil {
			return rec, nil, errDecorate(err, "iterate")
		}
	}
	if err := mol.Coords.Displace(b.step); err != nil {
		return rec, nil, wrapError(DimensionMismatch, err, "iterate")
	}
	rec.StepNorm = floats.Norm(b.step, 2)
	rec.Metrics, err = Evaluate(b.grad, b.step, O.opts.Thresholds)
	if err != nil {
		return rec, nil, errDecorate(err, "iterate")
	}
	copy(b.prevStep, b.step)
	copy(b.prevGrad, b.grad)
	return rec, orbs, nil
}

// errDecorate adds caller to the decorations of err if it is an Error,
// otherwise it wraps it in an OracleFailure Error.
func errDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	e, ok := err.(Error)
	if !ok {
		return wrapError(OracleFailure, err, caller)
	}
	e.deco = e.Decorate(caller)
	return e
}
