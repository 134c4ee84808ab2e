// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rtdb

import (
	"encoding/json"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestNwpwDefaultsAppliedWhenAbsent(tst *testing.T) {
	chk.PrintTitle("NwpwDefaultsAppliedWhenAbsent")
	raw := []byte(`{"nwpw": {"time_step": 8.0}}`)
	var o RTDB
	o.Nwpw.SetDefault()
	if err := json.Unmarshal(raw, &o); err != nil {
		tst.Fatalf("unmarshal: %v", err)
	}
	chk.Float64(tst, "time_step overridden", 1e-15, o.Nwpw.TimeStep, 8.0)
	chk.Float64(tst, "fake_mass default", 1e-15, o.Nwpw.FakeMass, 400.0)
	if o.Nwpw.Loop != [2]int{10, 1} {
		tst.Errorf("loop default = %v, want [10 1]", o.Nwpw.Loop)
	}
}

func TestRecordEnergiesTruncatesAndZeroPads(tst *testing.T) {
	chk.PrintTitle("RecordEnergiesTruncatesAndZeroPads")
	var n Nwpw
	n.RecordEnergies([]float64{1, 2, 3})
	chk.Float64(tst, "energies[0]", 1e-15, n.Energies[0], 1)
	chk.Float64(tst, "energies[2]", 1e-15, n.Energies[2], 3)
	chk.Float64(tst, "energies[3] zero-padded", 1e-15, n.Energies[3], 0)

	big := make([]float64, 100)
	for i := range big {
		big[i] = float64(i)
	}
	n.RecordEnergies(big)
	if len(n.Energies) != 60 {
		tst.Fatalf("Energies length changed: %d", len(n.Energies))
	}
	chk.Float64(tst, "energies[59] truncated", 1e-15, n.Energies[59], 59)
}

func TestMarkWavefunctionInitialized(tst *testing.T) {
	chk.PrintTitle("MarkWavefunctionInitialized")
	n := Nwpw{InitializeWavefunction: true}
	n.MarkWavefunctionInitialized()
	if n.InitializeWavefunction {
		tst.Errorf("expected initialize_wavefunction to be cleared")
	}
}
