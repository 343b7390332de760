/*
 * options.go, part of gochemopt.
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
	"log/slog"

	chem "github.com/rmera/gochemopt"
	"github.com/rmera/gochemopt/qm"
)

// Thresholds contains the convergence criteria, in atomic units.
type Thresholds struct {
	MaxForce float64 //largest gradient component
	RMSForce float64
	MaxDisp  float64 //largest step component
	RMSDisp  float64
}

// DefaultThresholds returns the usual criteria of quantum chemistry programs.
func DefaultThresholds() Thresholds {
	return Thresholds{MaxForce: 0.00045, RMSForce: 0.0003, MaxDisp: 0.0018, RMSDisp: 0.0012}
}

func (T Thresholds) validate() error {
	if T.MaxForce < 0 || T.RMSForce < 0 || T.MaxDisp < 0 || T.RMSDisp < 0 {
		return newError(InvalidConfiguration, fmt.Sprintf("negative threshold in %+v", T), "validate")
	}
	return nil
}

// Options contains the settings for an optimization. An Options value is
// never changed by the optimizer.
type Options struct {
	Multi             int     //spin multiplicity. If 0, the multiplicity of the molecule is used.
	MaxIter           int     //maximum number of iterations
	MaxStep           float64 //maximum norm of a step, in Bohr
	Thresholds        Thresholds
	Calc              *qm.Calc //settings for the first energy calculation, including the initial guess.
	RemoveTranslation bool     //remove the net translation from each step
	DegeneracyTol     float64  //a BFGS update with |dR.dGrad| not greater than this fails. 0 means only exact 0 fails.
	Logger            *slog.Logger

	//OnIteration, if not nil, is called after each iteration with its record and
	//the molecule at the new geometry. It must not change mol.
	OnIteration func(rec Record, mol *chem.Molecule)
}

// DefaultOptions returns reasonable options for small molecules.
func DefaultOptions() Options {
	return Options{
		MaxIter:    100,
		MaxStep:    0.3,
		Thresholds: DefaultThresholds(),
		Calc:       &qm.Calc{Guess: qm.GuessDefault},
	}
}

func (O Options) logger() *slog.Logger {
	if O.Logger == nil {
		return slog.Default()
	}
	return O.Logger
}

// validate checks the options that can be checked before running anything.
// MaxStep is checked by StepVector.
func (O Options) validate() error {
	if O.MaxIter <= 0 {
		return newError(InvalidConfiguration, fmt.Sprintf("MaxIter must be positive, got %d", O.MaxIter), "validate")
	}
	if O.Multi < 0 {
		return newError(InvalidConfiguration, fmt.Sprintf("invalid multiplicity %d", O.Multi), "validate")
	}
	if O.DegeneracyTol < 0 {
		return newError(InvalidConfiguration, fmt.Sprintf("negative degeneracy tolerance %g", O.DegeneracyTol), "validate")
	}
	return O.Thresholds.validate()
}
