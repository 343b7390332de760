/*
 * gonum.go, part of gochemopt.
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

//gonum.go contains what is needed for handling the gonum/mat types.

package v3

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a set of vectors in 3D space. The underlying implementation is a
// row-major gonum Dense with exactly 3 columns.
// Within the package it is understood that a "vector" is a row vector, i.e. the
// cartesian coordinates of a point in 3D space.
type Matrix struct {
	*mat.Dense
}

// Matrix2Dense returns the gonum Dense under A.
func Matrix2Dense(A *Matrix) *mat.Dense {
	return A.Dense
}

// Dense2Matrix wraps A in a Matrix. A must have 3 columns.
func Dense2Matrix(A *mat.Dense) *Matrix {
	if _, c := A.Dims(); c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return &Matrix{A}
}

// NewMatrix generates and returns a Matrix with 3 columns from data.
// data is used, not copied.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 || l == 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	r := mat.NewDense(rows, cols, data)
	return &Matrix{r}, nil
}

// VecView returns a view of the given vector of the matrix.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

// View returns a view of F starting from vector i, spanning r vectors.
// Changes in the view are reflected in F and vice-versa.
func (F *Matrix) View(i, r int) *Matrix {
	ret := F.Dense.Slice(i, i+r, 0, 3).(*mat.Dense)
	return &Matrix{ret}
}

// unwrap returns the Dense under A if A is a *Matrix. gonum only accepts
// the receiver as an operand when it gets the very same *mat.Dense.
func unwrap(A mat.Matrix) mat.Matrix {
	if C, ok := A.(*Matrix); ok {
		return C.Dense
	}
	return A
}

// Mul wraps mat.Dense.Mul to take care of the case when one of the
// arguments is also the receiver.
func (F *Matrix) Mul(A, B mat.Matrix) {
	F.Dense.Mul(unwrap(A), unwrap(B))
}

// Scale puts in the receiver A scaled by f. A can be the receiver.
func (F *Matrix) Scale(f float64, A mat.Matrix) {
	F.Dense.Scale(f, unwrap(A))
}

// Add puts A+B in the receiver. Either can be the receiver.
func (F *Matrix) Add(A, B mat.Matrix) {
	F.Dense.Add(unwrap(A), unwrap(B))
}

// Sub puts A-B in the receiver. Either can be the receiver.
func (F *Matrix) Sub(A, B mat.Matrix) {
	F.Dense.Sub(unwrap(A), unwrap(B))
}

// Copy copies A into the receiver, returning the number of rows and columns copied.
func (F *Matrix) Copy(A mat.Matrix) (r, c int) {
	return F.Dense.Copy(unwrap(A))
}

//Errors

// errorInt is the same as chem.Error but avoids a circular import.
type errorInt interface {
	Error() string
	Critical() bool
	Decorate(string) []string
}

// Error is the error type for the v3 package.
type Error struct {
	message  string
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string {
	return fmt.Sprintf("goChem/v3: %s", err.message)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

// errDecorate is a helper function that asserts that the error
// implements chem.Error and decorates the error with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	err2, ok := err.(errorInt)
	if !ok {
		return Error{err.Error(), []string{caller}, true}
	}
	err2.Decorate(caller)
	return err2
}

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix      = PanicMsg("goChem/v3: A v3.Matrix should have 3 columns")
	ErrNotEnoughElements = PanicMsg("goChem/v3: not enough elements in Matrix")
	ErrShape             = PanicMsg("goChem/v3: Dimension mismatch")
)
