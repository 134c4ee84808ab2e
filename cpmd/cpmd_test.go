// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpmd

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gopwdft/device"
	"github.com/cpmech/gopwdft/ion"
	"github.com/cpmech/gopwdft/lattice"
	"github.com/cpmech/gopwdft/neb"
	"github.com/cpmech/gopwdft/operator"
	"github.com/cpmech/gopwdft/pack"
	"github.com/cpmech/gopwdft/rtdb"
)

// setupHarmonic builds the single-H-atom, single-orbital harmonic-oscillator
// test double of spec §8 scenario S3 and property 8: a cubic cell, a
// HarmonicKinetic/HarmonicPotential pair standing in for the real
// plane-wave Hamiltonian, and a zero ionic force (the Ewald/pseudopotential
// force physics is out of scope).
func setupHarmonic(cell float64, ecut float64, npts int, dt, mFake float64, nsteps int) (*CPMD, [][3]float64) {
	unita := [3][3]float64{{cell, 0, 0}, {0, cell, 0}, {0, 0, cell}}
	lat := lattice.New(unita, ecut, 4*ecut, npts, npts, npts)
	grid := pack.NewGrid(lat, true, [][3]float64{{0, 0, 0}})
	dev := device.NewHostBLAS()
	bundle := neb.New(grid, dev, true, 1, [2]int{1, 0})

	rng := rand.New(rand.NewSource(42))
	for nbq := range bundle.Psi {
		v := bundle.Psi[nbq][0]
		for i := range v {
			v[i] = rng.NormFloat64()
		}
	}
	bundle.GOrtho(bundle.Psi)

	ham := &operator.Hamiltonian{
		Grid:  grid,
		Kin:   &operator.HarmonicKinetic{Grid: grid, Nb: 0, Mass: 1.0},
		Coul:  operator.NullCoulomb{},
		Xc:    operator.NullXC{},
		Pseud: &operator.HarmonicPotential{Nx: npts, Ny: npts, Nz: npts, Cell: [3]float64{cell, cell, cell}, Omega: 0.1},
	}

	ionState := ion.New([]float64{1836.15}, []float64{1.0}, []string{"H"})
	ionState.Rion1[0] = [3]float64{cell / 2, cell / 2, cell / 2}
	ionState.Rion0[0] = ionState.Rion1[0]

	n := &rtdb.Nwpw{
		Loop:     [2]int{nsteps, 1},
		TimeStep: dt,
		FakeMass: mFake,
		Scaling:  [2]float64{1, 1},
	}

	c := New(bundle, ionState, ham, n, 0, 1, false)
	fion := make([][3]float64, 1) // zero ionic force: Ewald/pseudopotential physics is out of scope
	return c, fion
}

// S3: single H atom, 8 a.u. cubic cell, a single harmonic-oscillator
// orbital, 100 CPMD steps with dt=5, m_fake=500 -- total energy drift over
// the run must stay below 5e-4 Hartree.
func TestS3EnergyConservedOverShortRun(tst *testing.T) {
	chk.PrintTitle("S3_EnergyConservedOverShortRun")
	c, fion := setupHarmonic(8.0, 20.0, 16, 5.0, 500.0, 100)
	e0 := c.Energy()
	for i := 0; i < 100; i++ {
		c.Step(fion)
	}
	eLast := c.Energy()
	drift := math.Abs(eLast - e0)
	if drift > 5e-4 {
		tst.Errorf("S3 drift = %v, want < 5e-4 (E0=%v, E100=%v)", drift, e0, eLast)
	}
}

// Property 8: with ecut=30 Ry, dt=5, m_fake=500, the per-100-step total
// energy drift must stay below 1e-5 Hartree.
func TestProperty8EnergyDriftBelowTolerancePer100Steps(tst *testing.T) {
	chk.PrintTitle("Property8_EnergyDriftBelowTolerancePer100Steps")
	c, fion := setupHarmonic(8.0, 30.0, 16, 5.0, 500.0, 100)
	e0 := c.Energy()
	for i := 0; i < 100; i++ {
		c.Step(fion)
	}
	eLast := c.Energy()
	drift := math.Abs(eLast - e0)
	if drift > 1e-5 {
		tst.Errorf("property 8 drift = %v, want < 1e-5 (E0=%v, E100=%v)", drift, e0, eLast)
	}
}

// Orbital normalization must survive the Lambda constraint across every
// step of a run, not just at the start and end.
func TestOrthonormalityMaintainedEveryStep(tst *testing.T) {
	chk.PrintTitle("OrthonormalityMaintainedEveryStep")
	c, fion := setupHarmonic(8.0, 20.0, 16, 5.0, 500.0, 20)
	for i := 0; i < 20; i++ {
		c.Step(fion)
		norm := c.Bundle.GGTraceAll(c.Psi1, c.Psi1)
		chk.Float64(tst, "orbital norm", 1e-8, norm, 2.0) // spin-restricted (ispin==1) doubling of GGTraceAll
	}
}

// Done reports true once Iter reaches MaxIters, and Run stops there.
func TestRunStopsAtMaxIters(tst *testing.T) {
	chk.PrintTitle("RunStopsAtMaxIters")
	c, fion := setupHarmonic(8.0, 20.0, 16, 5.0, 500.0, 5)
	_, err := c.Run(func() [][3]float64 { return fion })
	if err != nil {
		tst.Fatalf("Run: %v", err)
	}
	if c.Iter != c.MaxIters {
		tst.Errorf("Iter = %d, want %d", c.Iter, c.MaxIters)
	}
	if !c.Done() {
		tst.Errorf("expected Done() after Run")
	}
}

// End records the energy history into the RTDB document and clears the
// initialize_wavefunction flag, per spec §6's persisted-state contract.
func TestEndRecordsEnergiesAndClearsInitFlag(tst *testing.T) {
	chk.PrintTitle("EndRecordsEnergiesAndClearsInitFlag")
	c, fion := setupHarmonic(8.0, 20.0, 16, 5.0, 500.0, 3)
	c.Nwpw.InitializeWavefunction = true
	for i := 0; i < 3; i++ {
		c.Step(fion)
	}
	c.End()
	if c.Nwpw.InitializeWavefunction {
		tst.Errorf("expected initialize_wavefunction cleared after End")
	}
	if len(c.EnergyHistory) != 3 {
		tst.Fatalf("EnergyHistory length = %d, want 3", len(c.EnergyHistory))
	}
	chk.Float64(tst, "energies[0] recorded", 1e-15, c.Nwpw.Energies[0], c.EnergyHistory[0])
}
