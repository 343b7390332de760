/*
 * errors.go, part of gochemopt.
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
	"errors"
	"fmt"
)

// Kind classifies the errors of the package. A Kind is itself an error, so
// errors.Is(err, DegenerateUpdate) works on anything the package returns.
type Kind int

const (
	AllocationFailure       Kind = iota + 1 //buffers could not be allocated
	DegenerateUpdate                        //the step is orthogonal to the gradient change
	InvalidConfiguration                    //bad options
	DimensionMismatch                       //vectors or matrices of the wrong size
	OracleNonConvergence                    //the energy program returned 0.0
	IterationBudgetExceeded                 //not converged in MaxIter iterations
	OracleFailure                           //the energy program failed to run
	Canceled                                //the context was canceled
)

var kindNames = map[Kind]string{
	AllocationFailure:       "allocation failure",
	DegenerateUpdate:        "degenerate BFGS update",
	InvalidConfiguration:    "invalid configuration",
	DimensionMismatch:       "dimension mismatch",
	OracleNonConvergence:    "energy calculation did not converge",
	IterationBudgetExceeded: "maximum number of iterations exceeded",
	OracleFailure:           "energy/force calculation failed",
	Canceled:                "optimization canceled",
}

func (K Kind) String() string {
	if s, ok := kindNames[K]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(K))
}

func (K Kind) Error() string { return "goChem/opt: " + K.String() }

// Error is the error type for the opt package. It implements chem.Error.
type Error struct {
	kind     Kind
	message  string
	deco     []string
	critical bool
	err      error //underlying error, if any
}

func newError(kind Kind, message string, caller string) Error {
	return Error{kind: kind, message: message, deco: []string{caller}, critical: true}
}

// wrapError builds an Error of the given kind around err.
func wrapError(kind Kind, err error, caller string) Error {
	return Error{kind: kind, message: err.Error(), deco: []string{caller}, critical: true, err: err}
}

func (err Error) Error() string {
	if err.message == "" {
		return err.kind.Error()
	}
	return fmt.Sprintf("goChem/opt: %s: %s", err.kind.String(), err.message)
}

// Kind returns the kind of error.
func (err Error) Kind() Kind { return err.kind }

// Decorate adds the dec string to the decoration slice of strings of the error,
// and returns the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

// Unwrap returns the error that caused this one, if any.
func (err Error) Unwrap() error { return err.err }

// Is reports whether target is the Kind of err.
func (err Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == err.kind
}

// KindOf returns the Kind of err, or 0 if err doesn't come from this package.
func KindOf(err error) Kind {
	var e Error
	if errors.As(err, &e) {
		return e.kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return 0
}
