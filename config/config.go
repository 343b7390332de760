/*
 * config.go, part of gochemopt.
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

// Package config reads and writes the YAML files that describe an optimization run:
// the optimizer settings, the program that gives energies and forces, and the outputs.
// All quantities are in atomic units.
package config

import (
	"fmt"
	"os"
	"strings"

	chem "github.com/rmera/gochemopt"
	"github.com/rmera/gochemopt/opt"
	"github.com/rmera/gochemopt/qm"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxIter = 100
	DefaultMaxStep = 0.3 //Bohr
	DefaultOffset  = -1.0
	DefaultMethod  = "gfn2"
	DefaultAutoK   = 0.3 //Hartree/Bohr^2
)

// Oracle types
const (
	OracleHarmonic = "harmonic"
	OracleXTB      = "xtb"
)

type Config struct {
	Charge       int             `yaml:"charge"`
	Multiplicity int             `yaml:"multiplicity"`
	Optimizer    OptimizerConfig `yaml:"optimizer"`
	Calc         CalcConfig      `yaml:"calc"`
	Oracle       OracleConfig    `yaml:"oracle"`
	Output       OutputConfig    `yaml:"output"`
}

type OptimizerConfig struct {
	MaxIter           int              `yaml:"max_iter"`
	MaxStep           float64          `yaml:"max_step"`
	RemoveTranslation bool             `yaml:"remove_translation"`
	DegeneracyTol     float64          `yaml:"degeneracy_tol"`
	Thresholds        ThresholdsConfig `yaml:"thresholds"`
}

type ThresholdsConfig struct {
	MaxForce float64 `yaml:"max_force"`
	RMSForce float64 `yaml:"rms_force"`
	MaxDisp  float64 `yaml:"max_disp"`
	RMSDisp  float64 `yaml:"rms_disp"`
}

type CalcConfig struct {
	Method       string  `yaml:"method"`
	Guess        string  `yaml:"guess"`
	SCFTightness int     `yaml:"scf_tightness"`
	Dielectric   float64 `yaml:"dielectric"`
	Memory       int     `yaml:"memory"`
}

type OracleConfig struct {
	Type     string         `yaml:"type"`
	Harmonic HarmonicConfig `yaml:"harmonic"`
	XTB      XTBConfig      `yaml:"xtb"`
}

// HarmonicConfig describes a set of springs. If AutoBonds is true, a spring with force
// constant AutoK is added for each covalent bond found in the starting geometry.
type HarmonicConfig struct {
	Offset    float64      `yaml:"offset"`
	Bonds     []BondConfig `yaml:"bonds"`
	AutoBonds bool         `yaml:"auto_bonds"`
	AutoK     float64      `yaml:"auto_k"`
}

// BondConfig is a spring between atoms I and J (0-based), with force constant K
// in Hartree/Bohr^2 and equilibrium distance R0 in Bohr.
type BondConfig struct {
	I  int     `yaml:"i"`
	J  int     `yaml:"j"`
	K  float64 `yaml:"k"`
	R0 float64 `yaml:"r0"`
}

type XTBConfig struct {
	Command string `yaml:"command"`
	CPUs    int    `yaml:"cpus"`
	Name    string `yaml:"name"`
	WorkDir string `yaml:"workdir"`
}

// OutputConfig contains the names of the files to write. Empty names mean the file is not written.
type OutputConfig struct {
	XYZ        string `yaml:"xyz"`
	Trajectory string `yaml:"trajectory"`
	Plot       string `yaml:"plot"`
	EnergyPlot string `yaml:"energy_plot"`
}

func DefaultConfig() *Config {
	th := opt.DefaultThresholds()
	return &Config{
		Multiplicity: 1,
		Optimizer: OptimizerConfig{
			MaxIter: DefaultMaxIter,
			MaxStep: DefaultMaxStep,
			Thresholds: ThresholdsConfig{
				MaxForce: th.MaxForce,
				RMSForce: th.RMSForce,
				MaxDisp:  th.MaxDisp,
				RMSDisp:  th.RMSDisp,
			},
		},
		Calc: CalcConfig{
			Method: DefaultMethod,
			Guess:  qm.GuessDefault.String(),
		},
		Oracle: OracleConfig{
			Type:     OracleXTB,
			Harmonic: HarmonicConfig{Offset: DefaultOffset, AutoK: DefaultAutoK},
			XTB:      XTBConfig{Command: "xtb", Name: "gochem"},
		},
		Output: OutputConfig{XYZ: "optimized.xyz"},
	}
}

// Load reads the YAML file path. Values not in the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values that don't need a molecule to be checked.
func (c *Config) Validate() error {
	if c.Multiplicity < 1 {
		return fmt.Errorf("multiplicity must be at least 1, got %d", c.Multiplicity)
	}
	if c.Optimizer.MaxIter <= 0 {
		return fmt.Errorf("max_iter must be positive, got %d", c.Optimizer.MaxIter)
	}
	if c.Optimizer.MaxStep <= 0 {
		return fmt.Errorf("max_step must be positive, got %g", c.Optimizer.MaxStep)
	}
	t := c.Optimizer.Thresholds
	if t.MaxForce <= 0 || t.RMSForce <= 0 || t.MaxDisp <= 0 || t.RMSDisp <= 0 {
		return fmt.Errorf("thresholds must be positive: %+v", t)
	}
	if _, err := qm.ParseGuess(c.Calc.Guess); err != nil {
		return err
	}
	switch strings.ToLower(c.Oracle.Type) {
	case OracleHarmonic:
		if len(c.Oracle.Harmonic.Bonds) == 0 && !c.Oracle.Harmonic.AutoBonds {
			return fmt.Errorf("harmonic oracle without bonds")
		}
		if c.Oracle.Harmonic.AutoBonds && c.Oracle.Harmonic.AutoK <= 0 {
			return fmt.Errorf("auto_k must be positive, got %g", c.Oracle.Harmonic.AutoK)
		}
		for n, b := range c.Oracle.Harmonic.Bonds {
			if b.I == b.J || b.I < 0 || b.J < 0 || b.K <= 0 || b.R0 < 0 {
				return fmt.Errorf("ill-defined bond %d: %+v", n, b)
			}
		}
		if c.Oracle.Harmonic.Offset == 0 {
			return fmt.Errorf("harmonic offset can't be 0, as a 0 energy means a failed calculation")
		}
	case OracleXTB:
		if c.Oracle.XTB.Command == "" {
			return fmt.Errorf("empty xtb command")
		}
	default:
		return fmt.Errorf("unknown oracle type %q", c.Oracle.Type)
	}
	return nil
}

// Calculation returns the settings for the first energy calculation.
func (c *Config) Calculation() (*qm.Calc, error) {
	guess, err := qm.ParseGuess(c.Calc.Guess)
	if err != nil {
		return nil, err
	}
	return &qm.Calc{
		Method:       c.Calc.Method,
		Guess:        guess,
		SCFTightness: c.Calc.SCFTightness,
		Dielectric:   c.Calc.Dielectric,
		Memory:       c.Calc.Memory,
	}, nil
}

// Options returns the optimizer options. Logger and OnIteration are left for the caller.
func (c *Config) Options() (opt.Options, error) {
	Q, err := c.Calculation()
	if err != nil {
		return opt.Options{}, err
	}
	t := c.Optimizer.Thresholds
	return opt.Options{
		Multi:             c.Multiplicity,
		MaxIter:           c.Optimizer.MaxIter,
		MaxStep:           c.Optimizer.MaxStep,
		Thresholds:        opt.Thresholds{MaxForce: t.MaxForce, RMSForce: t.RMSForce, MaxDisp: t.MaxDisp, RMSDisp: t.RMSDisp},
		Calc:              Q,
		RemoveTranslation: c.Optimizer.RemoveTranslation,
		DegeneracyTol:     c.Optimizer.DegeneracyTol,
	}, nil
}

// WorkSet returns the program that will give energies and forces.
// mol, in Bohr, is only needed for harmonic oracles with automatic bonds.
func (c *Config) WorkSet(mol *chem.Molecule) (qm.WorkSet, error) {
	switch strings.ToLower(c.Oracle.Type) {
	case OracleHarmonic:
		bonds := make([]qm.Bond, len(c.Oracle.Harmonic.Bonds))
		for i, b := range c.Oracle.Harmonic.Bonds {
			bonds[i] = qm.Bond{I: b.I, J: b.J, K: b.K, R0: b.R0}
		}
		if c.Oracle.Harmonic.AutoBonds {
			if mol == nil {
				return nil, fmt.Errorf("automatic bonds need a molecule")
			}
			auto, err := qm.CovalentBonds(mol, c.Oracle.Harmonic.AutoK)
			if err != nil {
				return nil, err
			}
			bonds = append(bonds, auto...)
		}
		h := qm.NewHarmonicHandle(bonds...)
		h.Offset = c.Oracle.Harmonic.Offset
		return h, nil
	case OracleXTB:
		x := qm.NewXTBHandle()
		x.SetCommand(c.Oracle.XTB.Command)
		if c.Oracle.XTB.CPUs > 0 {
			x.SetnCPU(c.Oracle.XTB.CPUs)
		}
		if c.Oracle.XTB.Name != "" {
			x.SetName(c.Oracle.XTB.Name)
		}
		x.SetWorkDir(c.Oracle.XTB.WorkDir)
		return x, nil
	}
	return nil, fmt.Errorf("unknown oracle type %q", c.Oracle.Type)
}
