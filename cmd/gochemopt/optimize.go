/*
 * optimize.go, part of gochemopt.
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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/guptarohit/asciigraph"
	chem "github.com/rmera/gochemopt"
	"github.com/rmera/gochemopt/chemplot"
	"github.com/rmera/gochemopt/config"
	"github.com/rmera/gochemopt/opt"
	"github.com/rmera/gochemopt/traj/zxyz"
	v3 "github.com/rmera/gochemopt/v3"
	"github.com/spf13/cobra"
)

var (
	configPath    string
	saveConfig    string
	charge        int
	multi         int
	maxIter       int
	maxStep       float64
	oracleType    string
	method        string
	guess         string
	cpus          int
	xyzOut        string
	trajOut       string
	plotOut       string
	energyPlotOut string
	asciiPlot     bool
	autoBonds     bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize [flags] geometry.xyz",
	Short: "Optimize the geometry of a molecule",
	Long: `Optimizes the geometry in an xyz file (Angstrom). Settings are read from the
YAML file given with --config, if any, and flags override them.`,
	Args: cobra.ExactArgs(1),
	RunE: runOptimize,
}

func init() {
	f := optimizeCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	f.StringVar(&saveConfig, "save-config", "", "Write the final configuration to this file")
	f.IntVar(&charge, "charge", 0, "Total charge of the molecule")
	f.IntVar(&multi, "multi", 1, "Spin multiplicity")
	f.IntVar(&maxIter, "max-iter", config.DefaultMaxIter, "Maximum number of iterations")
	f.Float64Var(&maxStep, "max-step", config.DefaultMaxStep, "Maximum step length (Bohr)")
	f.StringVar(&oracleType, "oracle", config.OracleXTB, "Program for energies and forces (xtb, harmonic)")
	f.StringVar(&method, "method", config.DefaultMethod, "Method for the energy calculations")
	f.StringVar(&guess, "guess", "default", "Initial guess for the first calculation (default, orbitals)")
	f.IntVar(&cpus, "cpus", 0, "CPUs for the energy calculations")
	f.StringVarP(&xyzOut, "out", "o", "optimized.xyz", "Output xyz file for the optimized geometry")
	f.StringVar(&trajOut, "traj", "", "Write the optimization trajectory to this zxyz file")
	f.StringVar(&plotOut, "plot", "", "Plot the convergence criteria to this file (png, svg, pdf)")
	f.StringVar(&energyPlotOut, "energy-plot", "", "Plot the energy to this file (png, svg, pdf)")
	f.BoolVar(&autoBonds, "auto-bonds", false, "Harmonic oracle: add a spring for each covalent bond in the starting geometry")
	f.BoolVar(&asciiPlot, "ascii-plot", false, "Print an ASCII plot of the energy at the end")
	rootCmd.AddCommand(optimizeCmd)
}

// settings loads the configuration file, if given, and applies the flags the user set.
func settings(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}
	f := cmd.Flags()
	if f.Changed("charge") {
		cfg.Charge = charge
	}
	if f.Changed("multi") {
		cfg.Multiplicity = multi
	}
	if f.Changed("max-iter") {
		cfg.Optimizer.MaxIter = maxIter
	}
	if f.Changed("max-step") {
		cfg.Optimizer.MaxStep = maxStep
	}
	if f.Changed("oracle") {
		cfg.Oracle.Type = oracleType
	}
	if f.Changed("auto-bonds") {
		cfg.Oracle.Harmonic.AutoBonds = autoBonds
	}
	if f.Changed("method") {
		cfg.Calc.Method = method
	}
	if f.Changed("guess") {
		cfg.Calc.Guess = guess
	}
	if f.Changed("cpus") {
		cfg.Oracle.XTB.CPUs = cpus
	}
	if f.Changed("out") {
		cfg.Output.XYZ = xyzOut
	}
	if f.Changed("traj") {
		cfg.Output.Trajectory = trajOut
	}
	if f.Changed("plot") {
		cfg.Output.Plot = plotOut
	}
	if f.Changed("energy-plot") {
		cfg.Output.EnergyPlot = energyPlotOut
	}
	return cfg, cfg.Validate()
}

// readGeometry reads the first frame of the xyz file name and returns it in Bohr,
// with the charge and multiplicity in cfg.
func readGeometry(name string, cfg *config.Config) (*chem.Molecule, error) {
	mol, err := chem.XYZFileRead(name)
	if err != nil {
		return nil, err
	}
	mol.Coords.Scale(chem.A2Bohr, mol.Coords)
	mol.SetCharge(cfg.Charge)
	mol.SetMulti(cfg.Multiplicity)
	return mol, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
	}
	mol, err := readGeometry(args[0], cfg)
	if err != nil {
		return err
	}
	logger := slog.Default().With("run", uuid.NewString())
	logger.Info("Starting optimization", "file", args[0], "atoms", mol.Len(), "oracle", cfg.Oracle.Type, "maxIter", cfg.Optimizer.MaxIter)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	res, err := optimize(ctx, cfg, mol, cmd.OutOrStdout(), logger)
	if asciiPlot && res != nil && len(res.History) > 1 {
		fmt.Fprintln(cmd.OutOrStdout(), energyGraph(res.History))
	}
	if err != nil {
		return err
	}
	logger.Info("Optimization finished", "iterations", res.Iterations, "energy", res.Energy)
	return nil
}

// optimize runs the optimization described by cfg on mol (in Bohr), writing the report to out
// and the files requested in cfg.Output. The optimized geometry is written only on convergence,
// the trajectory and plots, also on failure.
func optimize(ctx context.Context, cfg *config.Config, mol *chem.Molecule, out io.Writer, logger *slog.Logger) (*opt.Result, error) {
	ws, err := cfg.WorkSet(mol)
	if err != nil {
		return nil, err
	}
	o, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	o.Logger = logger
	var traj *zxyz.ZxyzW
	if cfg.Output.Trajectory != "" {
		traj, err = zxyz.NewWriter(cfg.Output.Trajectory, mol.Topology)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := traj.Close(); err != nil {
				logger.Error("Failed to close trajectory", "file", cfg.Output.Trajectory, "error", err)
			}
		}()
		if err := writeFrame(traj, mol.Coords, "Initial geometry"); err != nil {
			return nil, err
		}
	}
	var trajErr error
	o.OnIteration = func(rec opt.Record, m *chem.Molecule) {
		if err := opt.WriteIteration(out, rec.Iteration, rec.Metrics, o.Thresholds); err != nil {
			logger.Warn("Failed to write report", "error", err)
		}
		if traj == nil || trajErr != nil {
			return
		}
		if trajErr = writeFrame(traj, m.Coords, fmt.Sprintf("Step %d E= %.10f", rec.Iteration+1, rec.Energy)); trajErr != nil {
			logger.Error("Failed to write trajectory frame, no more frames will be written", "error", trajErr)
		}
	}
	res, runErr := opt.New(ws, ws, o).RunContext(ctx, mol)
	plots(cfg, res, o.Thresholds, logger)
	if runErr != nil {
		if errors.Is(runErr, opt.Canceled) {
			logger.Warn("Optimization interrupted", "iterations", res.Iterations)
		}
		return res, runErr
	}
	if err := opt.WriteFinal(out, mol); err != nil {
		return res, err
	}
	if cfg.Output.XYZ != "" {
		coords := v3.Zeros(mol.Len())
		coords.Scale(chem.Bohr2A, mol.Coords)
		if err := chem.XYZFileWrite(cfg.Output.XYZ, coords, mol); err != nil {
			return res, err
		}
	}
	return res, nil
}

// writeFrame writes coords, in Bohr, as a frame in Angstrom.
func writeFrame(traj *zxyz.ZxyzW, coords *v3.Matrix, comment string) error {
	c := v3.Zeros(coords.NVecs())
	c.Scale(chem.Bohr2A, coords)
	return traj.WNext(c, comment)
}

// plots writes the plots requested in cfg. Failing to plot doesn't stop anything.
func plots(cfg *config.Config, res *opt.Result, th opt.Thresholds, logger *slog.Logger) {
	if res == nil || len(res.History) == 0 {
		return
	}
	if cfg.Output.Plot != "" {
		if err := chemplot.ConvergencePlot(res.History, th, "Convergence", cfg.Output.Plot); err != nil {
			logger.Warn("Failed to plot convergence", "file", cfg.Output.Plot, "error", err)
		}
	}
	if cfg.Output.EnergyPlot != "" {
		if err := chemplot.EnergyPlot(res.History, "Energy", cfg.Output.EnergyPlot); err != nil {
			logger.Warn("Failed to plot energy", "file", cfg.Output.EnergyPlot, "error", err)
		}
	}
}

// energyGraph returns an ASCII plot of the energies in history, in kcal/mol relative to the last one.
func energyGraph(history []opt.Record) string {
	last := history[len(history)-1].Energy
	data := make([]float64, len(history))
	for i, r := range history {
		data[i] = (r.Energy - last) * chem.H2Kcal
	}
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("E - E(last) (kcal/mol) per iteration"),
	)
}
