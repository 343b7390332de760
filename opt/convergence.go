/*
 * convergence.go, part of gochemopt.
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
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metrics are the values of the convergence criteria for one iteration,
// and whether each of them is satisfied.
type Metrics struct {
	MaxForce, RMSForce float64
	MaxDisp, RMSDisp   float64

	MaxForceOK, RMSForceOK bool
	MaxDispOK, RMSDispOK   bool
	Converged              bool //all of the above are OK
}

// Evaluate computes the largest absolute component and the RMS of the gradient
// and the step, and compares them with th. A criterion is satisfied when its value
// is not greater than the threshold.
func Evaluate(grad, step []float64, th Thresholds) (Metrics, error) {
	var m Metrics
	if len(grad) == 0 || len(grad) != len(step) {
		return m, newError(DimensionMismatch, fmt.Sprintf("gradient %d, step %d", len(grad), len(step)), "Evaluate")
	}
	m.MaxForce, m.RMSForce = maxRMS(grad)
	m.MaxDisp, m.RMSDisp = maxRMS(step)
	m.MaxForceOK = !(m.MaxForce > th.MaxForce)
	m.RMSForceOK = !(m.RMSForce > th.RMSForce)
	m.MaxDispOK = !(m.MaxDisp > th.MaxDisp)
	m.RMSDispOK = !(m.RMSDisp > th.RMSDisp)
	m.Converged = m.MaxForceOK && m.RMSForceOK && m.MaxDispOK && m.RMSDispOK
	return m, nil
}

// maxRMS returns the largest absolute value of v and its root mean square.
func maxRMS(v []float64) (max, rms float64) {
	max = floats.Norm(v, math.Inf(1))
	sq := make([]float64, len(v))
	floats.MulTo(sq, v, v)
	rms = math.Sqrt(stat.Mean(sq, nil))
	return max, rms
}
