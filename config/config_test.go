/*
 * config_test.go, part of gochemopt.
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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	chem "github.com/rmera/gochemopt"
	"github.com/rmera/gochemopt/opt"
	"github.com/rmera/gochemopt/qm"
)

func TestDefaultConfig(Te *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		Te.Fatal(err)
	}
	o, err := cfg.Options()
	if err != nil {
		Te.Fatal(err)
	}
	if o.Thresholds != opt.DefaultThresholds() || o.MaxIter != DefaultMaxIter || o.MaxStep != DefaultMaxStep {
		Te.Errorf("Wrong default options %+v", o)
	}
	if o.Calc.Guess != qm.GuessDefault || o.Calc.Method != DefaultMethod {
		Te.Errorf("Wrong default calculation %+v", o.Calc)
	}
	ws, err := cfg.WorkSet(nil)
	if err != nil {
		Te.Fatal(err)
	}
	if _, ok := ws.(*qm.XTBHandle); !ok {
		Te.Errorf("Default oracle should be xtb, got %T", ws)
	}
}

const harmonicYAML = `
charge: 0
multiplicity: 1
optimizer:
  max_iter: 50
  max_step: 0.2
  remove_translation: true
  thresholds:
    max_force: 0.0001
calc:
  guess: orbitals
oracle:
  type: harmonic
  harmonic:
    offset: -2
    bonds:
      - {i: 0, j: 1, k: 0.5, r0: 1.4}
output:
  trajectory: opt.zxyz
`

func TestLoad(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "run.yaml")
	if err := os.WriteFile(name, []byte(harmonicYAML), 0644); err != nil {
		Te.Fatal(err)
	}
	cfg, err := Load(name)
	if err != nil {
		Te.Fatal(err)
	}
	o, err := cfg.Options()
	if err != nil {
		Te.Fatal(err)
	}
	if o.MaxIter != 50 || o.MaxStep != 0.2 || !o.RemoveTranslation || o.Calc.Guess != qm.GuessOrbitals {
		Te.Errorf("Wrong options %+v", o)
	}
	//values not given keep their defaults
	if o.Thresholds.MaxForce != 0.0001 || o.Thresholds.RMSForce != opt.DefaultThresholds().RMSForce {
		Te.Errorf("Wrong thresholds %+v", o.Thresholds)
	}
	if cfg.Output.XYZ != "optimized.xyz" || cfg.Output.Trajectory != "opt.zxyz" {
		Te.Errorf("Wrong outputs %+v", cfg.Output)
	}
	ws, err := cfg.WorkSet(nil)
	if err != nil {
		Te.Fatal(err)
	}
	h, ok := ws.(*qm.HarmonicHandle)
	if !ok || h.Offset != -2 || len(h.Bonds) != 1 || h.Bonds[0] != (qm.Bond{I: 0, J: 1, K: 0.5, R0: 1.4}) {
		Te.Errorf("Wrong harmonic oracle %+v", ws)
	}
	again := filepath.Join(Te.TempDir(), "again.yaml")
	if err := Save(again, cfg); err != nil {
		Te.Fatal(err)
	}
	cfg2, err := Load(again)
	if err != nil {
		Te.Fatal(err)
	}
	if cfg2.Optimizer != cfg.Optimizer || cfg2.Oracle.Harmonic.Bonds[0] != cfg.Oracle.Harmonic.Bonds[0] {
		Te.Errorf("Saved config differs: %+v %+v", cfg2, cfg)
	}
}

func TestValidate(Te *testing.T) {
	bad := []func(*Config){
		func(c *Config) { c.Multiplicity = 0 },
		func(c *Config) { c.Optimizer.MaxIter = 0 },
		func(c *Config) { c.Optimizer.MaxStep = -0.1 },
		func(c *Config) { c.Optimizer.Thresholds.RMSDisp = 0 },
		func(c *Config) { c.Calc.Guess = "huckel" },
		func(c *Config) { c.Oracle.Type = "orca" },
		func(c *Config) { c.Oracle.XTB.Command = "" },
		func(c *Config) { c.Oracle.Type = OracleHarmonic },
		func(c *Config) {
			c.Oracle.Type = OracleHarmonic
			c.Oracle.Harmonic.Bonds = []BondConfig{{I: 1, J: 1, K: 1, R0: 1}}
		},
		func(c *Config) {
			c.Oracle.Type = OracleHarmonic
			c.Oracle.Harmonic.Bonds = []BondConfig{{I: 0, J: 1, K: 1, R0: 1}}
			c.Oracle.Harmonic.Offset = 0
		},
	}
	for i, f := range bad {
		cfg := DefaultConfig()
		f(cfg)
		if err := cfg.Validate(); err == nil {
			Te.Errorf("Bad configuration %d accepted", i)
		}
	}
	if _, err := Load(filepath.Join(Te.TempDir(), "missing.yaml")); err == nil {
		Te.Error("Loaded a missing file")
	}
}

func TestAutoBonds(Te *testing.T) {
	const xyz = "3\nwater\nO 0.0 0.0 0.1173\nH 0.0 0.7572 -0.4692\nH 0.0 -0.7572 -0.4692\n"
	mol, err := chem.XYZRead(strings.NewReader(xyz))
	if err != nil {
		Te.Fatal(err)
	}
	mol.Coords.Scale(chem.A2Bohr, mol.Coords)
	cfg := DefaultConfig()
	cfg.Oracle.Type = OracleHarmonic
	cfg.Oracle.Harmonic.AutoBonds = true
	if err := cfg.Validate(); err != nil {
		Te.Fatal(err)
	}
	if _, err := cfg.WorkSet(nil); err == nil {
		Te.Error("Automatic bonds without a molecule")
	}
	ws, err := cfg.WorkSet(mol)
	if err != nil {
		Te.Fatal(err)
	}
	h := ws.(*qm.HarmonicHandle)
	if len(h.Bonds) != 2 || h.Bonds[0].K != DefaultAutoK {
		Te.Errorf("Wrong automatic bonds %+v", h.Bonds)
	}
	cfg.Oracle.Harmonic.AutoK = 0
	if err := cfg.Validate(); err == nil {
		Te.Error("Accepted a zero force constant")
	}
}
