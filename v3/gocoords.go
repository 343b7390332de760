/*
 * gocoords.go, part of gochemopt.
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

package v3

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

//METHODS

// NVecs returns the number of vecs in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

// AddVec adds a vector to each vector of the matrix A, putting the result on the receiver.
// A can be the receiver.
func (F *Matrix) AddVec(A, vec *Matrix) {
	ar, ac := A.Dims()
	rr, rc := vec.Dims()
	fr, fc := F.Dims()
	if ac != rc || rr != 1 || ac != fc || ar != fr {
		panic(ErrShape)
	}
	v := mat.Row(nil, 0, vec.Dense)
	fraw := F.RawMatrix()
	araw := A.RawMatrix()
	for i := 0; i < ar; i++ {
		//working on the raw slices, as gonum doesn't allow
		//two different views of the same row as operands.
		floats.AddTo(fraw.Data[i*fraw.Stride:i*fraw.Stride+3], araw.Data[i*araw.Stride:i*araw.Stride+3], v)
	}
}

// SubVec subtracts the vector to each vector of the matrix A, putting
// the result on the receiver. Panics if matrices are mismatched.
func (F *Matrix) SubVec(A, vec *Matrix) {
	neg := Zeros(1)
	neg.Scale(-1, vec)
	F.AddVec(A, neg)
}

// Flat copies the coordinates of F, atom-major, into dst, which is returned.
// If dst is nil or too short, a new slice is allocated.
func (F *Matrix) Flat(dst []float64) []float64 {
	n := F.NVecs()
	if len(dst) < 3*n {
		dst = make([]float64, 3*n)
	}
	raw := F.RawMatrix()
	for i := 0; i < n; i++ {
		copy(dst[3*i:3*i+3], raw.Data[i*raw.Stride:i*raw.Stride+3])
	}
	return dst[:3*n]
}

// Displace adds the atom-major displacement d (x,y,z contiguous per vector)
// to the vectors of F, in place. It returns an error if the length of d doesn't match F.
func (F *Matrix) Displace(d []float64) error {
	n := F.NVecs()
	if len(d) != 3*n {
		return Error{fmt.Sprintf("Displacement of length %d for %d vectors", len(d), n), []string{"Displace"}, true}
	}
	raw := F.RawMatrix()
	for i := 0; i < n; i++ {
		floats.Add(raw.Data[i*raw.Stride:i*raw.Stride+3], d[3*i:3*i+3])
	}
	return nil
}

// Centroid returns a 1x3 matrix with the (unweighted) average of the vectors in F.
func (F *Matrix) Centroid() *Matrix {
	ret := Zeros(1)
	col := make([]float64, F.NVecs())
	for j := 0; j < 3; j++ {
		mat.Col(col, j, F.Dense)
		ret.Set(0, j, stat.Mean(col, nil))
	}
	return ret
}

// Dist returns the euclidean distance between the vectors i and j of F.
func (F *Matrix) Dist(i, j int) float64 {
	var sq float64
	for k := 0; k < 3; k++ {
		d := F.At(i, k) - F.At(j, k)
		sq += d * d
	}
	return math.Sqrt(sq)
}

// SomeVecs puts in the receiver the vectors of A with indexes in clist,
// in the same order as clist.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	ar, ac := A.Dims()
	fr, fc := F.Dims()
	if ac != fc || fr != len(clist) || ar < len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		for j := 0; j < ac; j++ {
			F.Set(key, j, A.At(val, j))
		}
	}
}

// SomeVecsSafe does the same as SomeVecs but it returns an error instead of panicking.
func (F *Matrix) SomeVecsSafe(A *Matrix, clist []int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			switch e := r.(type) {
			case PanicMsg:
				err = Error{string(e), []string{"SomeVecsSafe"}, true}
			case mat.Error:
				err = Error{fmt.Sprintf("Error in a gonum function: %s", e), []string{"SomeVecsSafe"}, true}
			default:
				panic(r)
			}
		}
	}()
	F.SomeVecs(A, clist)
	return err
}

// String returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	r, c := F.Dims()
	v := make([]string, r+2)
	v[0] = "\n["
	v[len(v)-1] = " ]"
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, F.Dense)
		if i == 0 {
			v[i+1] = fmt.Sprintf("%6.2f %6.2f %6.2f\n", row[0], row[1], row[2])
			continue
		}
		v[i+1] = fmt.Sprintf(" %6.2f %6.2f %6.2f\n", row[0], row[1], row[2])
	}
	v[len(v)-2] = strings.Replace(v[len(v)-2], "\n", "", 1)
	return strings.Join(v, "")
}
