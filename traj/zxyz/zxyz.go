/*
 * zxyz.go, part of gochemopt.
 *
 * Copyright 2021 Raul Mera <rmeraatusachdotcl>
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

package zxyz

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/gochemopt"
	v3 "github.com/rmera/gochemopt/v3"
)

//Write!

// ZxyzW writes frames to a zxyz trajectory.
type ZxyzW struct {
	f         *os.File
	h         *zstd.Encoder
	atoms     chem.Atomer
	filename  string
	writeable bool
	frames    int
}

// NewWriter creates the file name and returns a writer for frames of the atoms in atoms.
// The optional level is a zstd encoder level; the default is zstd.SpeedDefault.
func NewWriter(name string, atoms chem.Atomer, level ...zstd.EncoderLevel) (*ZxyzW, error) {
	if atoms == nil || atoms.Len() == 0 {
		return nil, Error{NoAtoms, name, []string{"NewWriter"}, true}
	}
	l := zstd.SpeedDefault
	if len(level) > 0 {
		l = level[0]
	}
	Z := &ZxyzW{atoms: atoms, filename: name}
	var err error
	Z.f, err = os.Create(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"os.Create", "NewWriter"}, true}
	}
	Z.h, err = zstd.NewWriter(Z.f, zstd.WithEncoderLevel(l))
	if err != nil {
		Z.f.Close()
		return nil, Error{"Can't start compression: " + err.Error(), name, []string{"zstd.NewWriter", "NewWriter"}, true}
	}
	Z.writeable = true
	return Z, nil
}

// Len returns the number of atoms per frame.
func (Z *ZxyzW) Len() int {
	return Z.atoms.Len()
}

// Frames returns the number of frames written so far.
func (Z *ZxyzW) Frames() int {
	return Z.frames
}

// WNext writes a frame with the coordinates coord, in Angstrom, and the given comment.
func (Z *ZxyzW) WNext(coord *v3.Matrix, comment string) error {
	if !Z.writeable {
		return Error{TrajUnIniWrite, Z.filename, []string{"WNext"}, true}
	}
	if coord == nil {
		return Error{NilCoordinates, Z.filename, []string{"WNext"}, true}
	}
	if v := coord.NVecs(); v != Z.atoms.Len() {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", v, Z.atoms.Len()), Z.filename, []string{"WNext"}, true}
	}
	if err := chem.XYZWrite(Z.h, coord, Z.atoms, comment); err != nil {
		return Error{err.Error(), Z.filename, []string{"chem.XYZWrite", "WNext"}, true}
	}
	Z.frames++
	return nil
}

// Close flushes the compressed stream and closes the file. The writer can't be used after this call.
func (Z *ZxyzW) Close() error {
	if Z == nil || !Z.writeable {
		return nil
	}
	Z.writeable = false
	err := Z.h.Close()
	if err2 := Z.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return Error{err.Error(), Z.filename, []string{"Close"}, true}
	}
	return nil
}

//Read!

// ZxyzR reads frames from a zxyz trajectory.
type ZxyzR struct {
	f        *os.File
	dec      *zstd.Decoder
	xyz      *chem.XYZFrameReader
	filename string
	readable bool
	top      *chem.Topology
	pending  *v3.Matrix //the first frame, read when opening
	comment  string
	pcomment string
}

// New opens the zxyz trajectory name for reading. The first frame is read
// to learn the atoms of the trajectory.
func New(name string) (*ZxyzR, error) {
	Z := &ZxyzR{filename: name}
	var err error
	Z.f, err = os.Open(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"os.Open", "New"}, true}
	}
	Z.dec, err = zstd.NewReader(Z.f)
	if err != nil {
		Z.f.Close()
		return nil, Error{"Can't start decompression: " + err.Error(), name, []string{"zstd.NewReader", "New"}, true}
	}
	Z.xyz = chem.NewXYZFrameReader(Z.dec)
	mol, comment, err := Z.xyz.Next()
	if err != nil {
		Z.dec.Close()
		Z.f.Close()
		if err == io.EOF {
			return nil, Error{EmptyTrajectory, name, []string{"New"}, true}
		}
		return nil, Error{WrongFormat + ": " + err.Error(), name, []string{"New"}, true}
	}
	Z.top = mol.Topology
	Z.pending = mol.Coords
	Z.pcomment = comment
	Z.readable = true
	return Z, nil
}

// Readable returns true if the handle is readable (if it is possible to call Next on it)
func (Z *ZxyzR) Readable() bool {
	return Z.readable
}

// Len returns the number of atoms in each frame of the trajectory.
func (Z *ZxyzR) Len() int {
	return Z.top.Len()
}

// Topology returns the atoms of the trajectory.
func (Z *ZxyzR) Topology() *chem.Topology {
	return Z.top
}

// Comment returns the comment line of the last frame read.
func (Z *ZxyzR) Comment() string {
	return Z.comment
}

// Next puts in c the coordinates of the next frame, or discards them if c is nil.
// At the end of the trajectory it returns an error implementing chem.LastFrameError
// and closes the handle.
func (Z *ZxyzR) Next(c *v3.Matrix) error {
	if !Z.readable {
		return Error{TrajUnIniRead, Z.filename, []string{"Next"}, true}
	}
	var coords *v3.Matrix
	if Z.pending != nil {
		coords = Z.pending
		Z.comment = Z.pcomment
		Z.pending = nil
	} else {
		mol, comment, err := Z.xyz.Next()
		if err == io.EOF {
			Z.Close()
			return newlastFrameError(Z.filename, "Next")
		}
		if err != nil {
			return Error{ReadError + ": " + err.Error(), Z.filename, []string{"Next"}, true}
		}
		if mol.Len() != Z.top.Len() {
			return Error{fmt.Sprintf("%s: frame with %d atoms, expected %d", WrongFormat, mol.Len(), Z.top.Len()), Z.filename, []string{"Next"}, true}
		}
		coords = mol.Coords
		Z.comment = comment
	}
	if c == nil {
		return nil
	}
	if c.NVecs() != coords.NVecs() {
		return Error{NotEnoughSpace, Z.filename, []string{"Next"}, true}
	}
	c.Copy(coords)
	return nil
}

// Close closes the object, and marks it as unreadable
func (Z *ZxyzR) Close() {
	if !Z.readable {
		return
	}
	Z.dec.Close()
	Z.f.Close()
	Z.readable = false
}

//Errors

// Error is the general structure for zxyz trajectory errors. It fullfills chem.Error and chem.TrajError
type Error struct {
	message  string
	filename string //the input file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("zxyz file %s error: %s", err.filename, err.message)
}

// Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

// Format returns the format of the file (always "zxyz") associated to the error
func (err Error) Format() string { return "zxyz" }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead   = "Traj object uninitialized to read"
	TrajUnIniWrite  = "Traj object uninitialized to write"
	ReadError       = "Error reading frame"
	UnableToOpen    = "Unable to open file"
	NilCoordinates  = "Given nil coordinates"
	NoAtoms         = "No atoms given"
	WrongFormat     = "Wrong format in the zxyz file or frame"
	EmptyTrajectory = "No frames in the trajectory"
	NotEnoughSpace  = "Not enough space in passed blocks"
)

// lastFrameError implements chem.LastFrameError
type lastFrameError struct {
	deco     []string
	fileName string
}

// NormalLastFrameTermination does nothing
func (E lastFrameError) NormalLastFrameTermination() {}

func (E lastFrameError) FileName() string { return E.fileName }

func (E lastFrameError) Error() string { return "EOF" }

func (E lastFrameError) Critical() bool { return false }

func (E lastFrameError) Format() string { return "zxyz" }

func (E lastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

func newlastFrameError(filename string, caller string) *lastFrameError {
	e := new(lastFrameError)
	e.fileName = filename
	e.deco = []string{caller}
	return e
}
