/*
 * convergence.go, part of gochemopt
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
 * Gochem is developed at the laboratory for instruction in Swedish, Department of Chemistry,
 * University of Helsinki, Finland.
 *
 *
*/
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chemplot

import (
	"fmt"

	chem "github.com/rmera/gochemopt"
	"github.com/rmera/gochemopt/opt"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

func basicPlot(title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Padding = 3 * vg.Millimeter
	p.Title.Text = title
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

// ConvergencePlot plots, for each iteration in history, each convergence criterion divided
// by its threshold, in logarithmic scale, so the optimization has converged when
// all the lines are under 1. The format is chosen from the extension of filename
// (png, svg, pdf...).
func ConvergencePlot(history []opt.Record, th opt.Thresholds, title, filename string) error {
	if len(history) == 0 {
		return fmt.Errorf("chemplot: no iterations to plot")
	}
	p := basicPlot(title, "Value/Threshold")
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{}
	err := plotutil.AddLinePoints(p,
		"Max force", ratios(history, func(m opt.Metrics) float64 { return m.MaxForce }, th.MaxForce),
		"RMS force", ratios(history, func(m opt.Metrics) float64 { return m.RMSForce }, th.RMSForce),
		"Max disp.", ratios(history, func(m opt.Metrics) float64 { return m.MaxDisp }, th.MaxDisp),
		"RMS disp.", ratios(history, func(m opt.Metrics) float64 { return m.RMSDisp }, th.RMSDisp),
	)
	if err != nil {
		return err
	}
	one := plotter.NewFunction(func(float64) float64 { return 1 })
	one.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(one)
	p.Legend.Top = true
	return p.Save(12*vg.Centimeter, 9*vg.Centimeter, filename)
}

// EnergyPlot plots the energy at each iteration in history, in kcal/mol,
// relative to the last one.
func EnergyPlot(history []opt.Record, title, filename string) error {
	if len(history) == 0 {
		return fmt.Errorf("chemplot: no iterations to plot")
	}
	p := basicPlot(title, "E - E(last) (kcal/mol)")
	last := history[len(history)-1].Energy
	xys := make(plotter.XYs, len(history))
	for i, v := range history {
		xys[i].X = float64(v.Iteration + 1)
		xys[i].Y = (v.Energy - last) * chem.H2Kcal
	}
	if err := plotutil.AddLinePoints(p, "Energy", xys); err != nil {
		return err
	}
	return p.Save(12*vg.Centimeter, 9*vg.Centimeter, filename)
}
