// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rtdb implements the external runtime-database JSON contract of
// spec §6: the `nwpw.*` keys the CPMD integrator reads its run parameters
// from and writes its accumulated energies and charges back into. Grounded
// on gofem/inp's Data/Simulation JSON structs and ReadSim's
// io.ReadFile+json.Unmarshal pattern.
package rtdb

import (
	"bytes"
	"encoding/json"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Nwpw is the `nwpw` JSON object the original runtime database stores the
// CPMD integrator's configuration and persisted state under. Field names
// mirror spec §6's key names exactly.
type Nwpw struct {
	Loop     [2]int     `json:"loop"`      // loop[0]: inner steps per outer, loop[1]: outer iterations
	TimeStep float64    `json:"time_step"` // atomic units
	FakeMass float64    `json:"fake_mass"`
	Scaling  [2]float64 `json:"scaling"` // [0]: orbital velocity rescale, [1]: ion velocity rescale

	SA      bool       `json:"SA"`
	SaDecay [2]float64 `json:"sa_decay"`

	InitializeWavefunction      bool   `json:"initialize_wavefunction"`
	InputWavefunctionFilename   string `json:"input_wavefunction_filename"`
	InputVWavefunctionFilename  string `json:"input_v_wavefunction_filename"`
	OutputWavefunctionFilename  string `json:"output_wavefunction_filename"`
	OutputVWavefunctionFilename string `json:"output_v_wavefunction_filename"`

	NcellCubefiles  int        `json:"ncell_cubefiles"`
	OriginCubefiles [3]float64 `json:"origin_cubefiles"`

	// Energies accumulated across a run: spec §6 reserves 60 slots
	// (energies[0..59]) for the breakdown the original code reports
	// (total, kinetic electron/ion, potential terms, constraint residual,
	// temperatures, ...); unused slots stay zero.
	Energies [60]float64 `json:"energies"`

	// Q holds per-ion atom-centered-potential charges, sized to nion at
	// load time; nil when the pseudopotential has no APC term.
	Q []float64 `json:"q,omitempty"`
}

// RTDB is the JSON document this package reads and writes, matching the
// `{"nwpw": {...}}` envelope the original runtime database presents.
type RTDB struct {
	Nwpw Nwpw `json:"nwpw"`
}

// SetDefault fills in the run parameters the original code treats as
// optional, matching inp.Data's SetDefault-style convention.
func (o *Nwpw) SetDefault() {
	if o.Loop == [2]int{0, 0} {
		o.Loop = [2]int{10, 1}
	}
	if o.TimeStep == 0 {
		o.TimeStep = 5.0
	}
	if o.FakeMass == 0 {
		o.FakeMass = 400.0
	}
	if o.Scaling == [2]float64{0, 0} {
		o.Scaling = [2]float64{1, 1}
	}
}

// Read loads an RTDB document from path, applying SetDefault to the nwpw
// section before unmarshaling over it so JSON-absent fields keep their
// defaults -- the same "set defaults, then decode over them" sequence
// inp.ReadSim uses for .sim files.
func Read(path string) (*RTDB, error) {
	var o RTDB
	o.Nwpw.SetDefault()
	b, err := io.ReadFile(path)
	if err != nil {
		return nil, chk.Err("rtdb.Read: cannot read %q: %v", path, err)
	}
	if err := json.Unmarshal(b, &o); err != nil {
		return nil, chk.Err("rtdb.Read: cannot unmarshal %q: %v", path, err)
	}
	return &o, nil
}

// Write serializes the RTDB document back to path, matching
// inp.Simulation's json.MarshalIndent("", "  ") convention.
func Write(path string, o *RTDB) error {
	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return chk.Err("rtdb.Write: cannot marshal: %v", err)
	}
	buf := bytes.NewBuffer(b)
	io.WriteFile(path, buf)
	return nil
}

// RecordEnergies writes e into Energies, truncating or zero-padding to the
// fixed 60-slot layout.
func (o *Nwpw) RecordEnergies(e []float64) {
	n := len(e)
	if n > len(o.Energies) {
		n = len(o.Energies)
	}
	for i := 0; i < len(o.Energies); i++ {
		o.Energies[i] = 0
	}
	copy(o.Energies[:n], e[:n])
}

// MarkWavefunctionInitialized clears initialize_wavefunction after the
// first successful restart write, per spec §6's "Environment / persisted
// state" note.
func (o *Nwpw) MarkWavefunctionInitialized() {
	o.InitializeWavefunction = false
}
