/*
 * errors.go, part of gochemopt.
 *
 *
 * Copyright 2016 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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
 */

package qm

import (
	"fmt"
	"strings"
)

// Error is the error type for the qm package. It implements chem.Error.
type Error struct {
	message    string
	code       string //the name of the QM program giving the problem, or empty string if none
	inputname  string //the input file that has problems, or empty string if none.
	additional string
	deco       []string
	critical   bool
}

func (err Error) Error() string {
	parts := []string{"goChem/QM"}
	if err.code != "" {
		parts = append(parts, err.code)
	}
	if err.inputname != "" {
		parts = append(parts, err.inputname)
	}
	msg := strings.Join(parts, " ") + ": " + err.message
	if err.additional != "" {
		msg = fmt.Sprintf("%s: %s", msg, err.additional)
	}
	return msg
}

// Decorate adds the dec string to the decoration slice of strings of the error,
// and returns the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Code returns the name of the program that ran/was supposed to run the calculation
func (err Error) Code() string { return err.code }

// InputName returns the name of the input file which processing caused the error
func (err Error) InputName() string { return err.inputname }

// Critical returns whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

// Errors
const (
	ErrNoEnergy        = "Couldn't obtain energy"
	ErrNoGradient      = "Couldn't obtain the gradient"
	ErrCantInput       = "Can't build input file"
	ErrNotRunning      = "Couldn't run calculation"
	ErrMissingCharges  = "Missing charges or coordinates"
	ErrBadRepr         = "Representation not built by this handle, or already released"
	ErrBadBond         = "Ill-defined bond"
	ErrUnknownGuess    = "Unknown guess mode"
	ErrProbableProblem = "Probable problem in calculation"
)

// Program names
const (
	XTB      = "XTB"
	Harmonic = "Harmonic"
)
