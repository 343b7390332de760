/*
 * plotutils.go, part of gochemopt
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU Lesser General Public License as published by
    the Free Software Foundation, either version 2.1 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU Lesser General Public License
    along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 *
*/

package chemplot

import (
	"math"

	"github.com/rmera/gochemopt/opt"
	"gonum.org/v1/plot/plotter"
)

//Some internal convenience functions.

// logFloor is the smallest value put in a plot with logarithmic axis.
const logFloor = 1e-8

// ratios returns, for each record, the value given by metric divided by threshold,
// with the iteration (1-based) as X. Values are kept above logFloor.
func ratios(history []opt.Record, metric func(opt.Metrics) float64, threshold float64) plotter.XYs {
	ret := make(plotter.XYs, len(history))
	for i, v := range history {
		ret[i].X = float64(v.Iteration + 1)
		y := metric(v.Metrics)
		if threshold > 0 {
			y /= threshold
		}
		ret[i].Y = math.Max(y, logFloor)
	}
	return ret
}
