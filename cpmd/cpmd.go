// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpmd implements the Car-Parrinello Verlet integrator of spec
// §4.9: one extended-Lagrangian step over the orbital bundle and the ionic
// coordinates, simulated-annealing scaling decay, and the wall-clock
// stopping check of spec §5. Grounded on gofem/fem/fem.go's
// FEM/NewFEM/Run/End driver shape -- Sim/Domains/Solver generalize to
// Nwpw/Bundle/Ion/Hamiltonian, and Proc/Nproc/ShowMsg carry over unchanged.
package cpmd

import (
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/gopwdft/device"
	"github.com/cpmech/gopwdft/ion"
	"github.com/cpmech/gopwdft/neb"
	"github.com/cpmech/gopwdft/operator"
	"github.com/cpmech/gopwdft/rtdb"
)

// CPMD holds every piece of state one Verlet step touches: the orbital
// bundle's three history buffers (psi0/psi1/psi2), the ion subsystem, the
// external Hamiltonian, and the run configuration read from the RTDB
// document.
type CPMD struct {
	Bundle *neb.Bundle
	Ion    *ion.Ion
	Ham    *operator.Hamiltonian
	Nwpw   *rtdb.Nwpw

	Psi0, Psi1, Psi2 [][2][]float64
	Lambda           [2]device.Matrix

	Dt       float64
	FakeMass float64

	// scalE, scalI are the current electron/ion velocity-rescale factors;
	// they start at Nwpw.Scaling and decay exponentially per step when
	// simulated annealing is enabled without an active thermostat, per
	// spec §4.9's "Simulated annealing" note.
	scalE, scalI float64

	firstStep bool // true until the first Step call -- selects verlet=false

	Iter      int
	MaxIters  int
	WallStart time.Time
	WallLimit time.Duration

	Proc    int
	Nproc   int
	ShowMsg bool

	// EnergyHistory[i] is the total energy (spec §8 property 8's E_tot)
	// recorded by the i-th call to Step, in call order.
	EnergyHistory []float64
}

// New assembles a CPMD driver, directly modeled on gofem's NewFEM: bundle,
// ion state, and Hamiltonian are pre-built by the caller (this package does
// not itself know how to parse a lattice or pseudopotential file -- that is
// the external-collaborator boundary of spec §6), and New only wires the
// run parameters and history buffers around them.
func New(bundle *neb.Bundle, ionState *ion.Ion, ham *operator.Hamiltonian, n *rtdb.Nwpw, proc, nproc int, verbose bool) *CPMD {
	o := &CPMD{
		Bundle:   bundle,
		Ion:      ionState,
		Ham:      ham,
		Nwpw:     n,
		Dt:       n.TimeStep,
		FakeMass: n.FakeMass,
		scalE:    n.Scaling[0],
		scalI:    n.Scaling[1],
		firstStep: true,
		MaxIters:  n.Loop[0] * n.Loop[1],
		Proc:      proc,
		Nproc:     nproc,
		ShowMsg:   verbose && proc == 0,
	}
	o.Psi0 = bundle.AllocPsi()
	o.Psi1 = bundle.AllocPsi()
	o.Psi2 = bundle.AllocPsi()
	neb.GCopy(bundle.Psi, o.Psi1)
	neb.GCopy(bundle.Psi, o.Psi0)
	if o.ShowMsg {
		io.Pf("> Initialisation step completed\n")
	}
	return o
}

// Start applies the startup conventions of spec §4.9: velocity rescale to
// the target temperature (if a target was configured) and the translation
// constraint fix, before the first (explicit half-step) Verlet call.
func (o *CPMD) Start(targetTemp float64) {
	if targetTemp > 0 {
		o.Ion.RescaleVelocities(targetTemp)
	}
	o.Ion.FixCom()
	if o.ShowMsg {
		io.Pf("> Start: wavefunction and ion velocities initialised\n")
	}
}

// totalDensity folds the per-spin densities into the single real-space
// density the Coulomb/XC/local-pseudopotential terms act on: summed
// directly for the spin-unrestricted case, doubled for the spin-restricted
// (ispin==1) case where each orbital is doubly occupied.
func totalDensity(ispin int, dn [2][]float64) []float64 {
	total := make([]float64, len(dn[0]))
	if ispin == 1 {
		for r, v := range dn[0] {
			total[r] = 2 * v
		}
		return total
	}
	for r := range total {
		total[r] = dn[0][r] + dn[1][r]
	}
	return total
}

// density computes the per-spin real-space density of psi via the batched
// inverse FFT (spec §4.5's gh_fftb/hr_aSumSqr pipeline).
func (o *CPMD) density(psi [][2][]float64) [2][]float64 {
	nfft3d := o.Bundle.Grid.Lat.Nfft3D()
	var dn [2][]float64
	for ms := 0; ms < o.Bundle.Ispin; ms++ {
		dn[ms] = make([]float64, nfft3d)
	}
	psiR := o.Bundle.GhFftb(psi)
	o.Bundle.HrASumSqr(1.0, psiR, dn)
	return dn
}

// potential assembles the combined real-space potential Vxc+VH+Vloc that
// operator.Hamiltonian.Apply needs, from the total density.
func (o *CPMD) potential(dnTotal []float64) []float64 {
	nfft3d := len(dnTotal)
	pot := make([]float64, nfft3d)
	vh := make([]float64, nfft3d)
	vxc := make([]float64, nfft3d)
	o.Ham.Coul.VHartree(dnTotal, vh)
	o.Ham.Xc.VXC(dnTotal, vxc)
	o.Ham.Pseud.VLocalAdd(pot)
	for r := range pot {
		pot[r] += vh[r] + vxc[r]
	}
	return pot
}

// hpsi applies the external Hamiltonian to every local orbital of psi.
func (o *CPMD) hpsi(psi [][2][]float64, pot []float64) [][2][]float64 {
	hpsi := o.Bundle.AllocPsi()
	grid := o.Bundle.Grid
	for nbq := range psi {
		stride := 2 * grid.Npack[nbq]
		for ms := 0; ms < o.Bundle.Ispin; ms++ {
			n := len(psi[nbq][ms]) / stride
			for col := 0; col < n; col++ {
				pk := o.Bundle.Column(psi, nbq, ms, col)
				hk := o.Bundle.Column(hpsi, nbq, ms, col)
				o.Ham.Apply(nbq, pk, pot, hk)
			}
		}
	}
	return hpsi
}

// electronicEnergy returns (E_kin_elec, E_potential) for the current psi
// and the real-space potential/density pair already computed this step.
func (o *CPMD) electronicEnergy(psi [][2][]float64, dnTotal, pot []float64) (keElec, epot float64) {
	grid := o.Bundle.Grid
	for nbq := range psi {
		stride := 2 * grid.Npack[nbq]
		for ms := 0; ms < o.Bundle.Ispin; ms++ {
			n := len(psi[nbq][ms]) / stride
			for col := 0; col < n; col++ {
				pk := o.Bundle.Column(psi, nbq, ms, col)
				keElec += o.Bundle.W[nbq] * o.Ham.Kin.KeAve(pk)
			}
		}
	}
	if o.Bundle.Ispin == 1 {
		keElec *= 2
	}
	dv := grid.Lat.Omega / float64(grid.Lat.Nfft3D())
	for r := range pot {
		epot += dnTotal[r] * pot[r] * dv
	}
	return
}

// Energy returns the total energy E_tot = E_potential + E_kin_elec +
// E_kin_ion of spec §8 property 8, evaluated at the current Psi1/Ion state
// (i.e. before the next Step call mutates either).
func (o *CPMD) Energy() float64 {
	dn := o.density(o.Psi1)
	dnTotal := totalDensity(o.Bundle.Ispin, dn)
	pot := o.potential(dnTotal)
	keElec, epot := o.electronicEnergy(o.Psi1, dnTotal, pot)
	return epot + keElec + o.Ion.KineticEnergy()
}

// Step advances the system by one Verlet step of spec §4.9's six-point
// sequence, given the ionic forces fion (an external collaborator
// responsibility per spec §6's Ewald/Pseudopotential contracts -- this
// package only consumes fion, it does not compute it). It records and
// returns the pre-step total energy.
func (o *CPMD) Step(fion [][3]float64) float64 {
	etot := o.Energy()
	o.EnergyHistory = append(o.EnergyHistory, etot)

	// 1. external Hpsi
	dn := o.density(o.Psi1)
	dnTotal := totalDensity(o.Bundle.Ispin, dn)
	pot := o.potential(dnTotal)
	hp := o.hpsi(o.Psi1, pot)

	// 2. Newton/Verlet update: psi2 <- 2*psi1 - psi0 + (dt^2/m_fake)*Hpsi*scale
	scaled := o.Bundle.AllocPsi()
	coeff := o.Dt * o.Dt / o.FakeMass * o.scalE
	neb.GSMul(coeff, hp, scaled)
	neb.GSMul(2.0, o.Psi1, o.Psi2)
	neb.GGMinus2(o.Psi0, o.Psi2)
	neb.GGSum2(scaled, o.Psi2)

	// 3. Lambda constraint
	o.Lambda = o.Bundle.GGMLambda(o.Dt, o.Psi1, o.Psi2)

	// 4. ion Verlet
	o.Ion.VerletStep(o.Dt, fion, !o.firstStep)

	// 5. rotate buffers: psi0 <- psi1, psi1 <- psi2 (the freed old psi0
	// storage becomes next iteration's psi2 scratch).
	o.Psi0, o.Psi1, o.Psi2 = o.Psi1, o.Psi2, o.Psi0
	o.firstStep = false

	// simulated annealing: exponential scale decay, only when no
	// thermostat is driving Te/Tr (spec §4.9's "Simulated annealing" note).
	if o.Nwpw.SA && !o.Ion.NoseHoover {
		o.scalE *= 1.0 - o.Nwpw.SaDecay[0]
		o.scalI *= 1.0 - o.Nwpw.SaDecay[1]
	}

	// 6. stats / stopping check
	o.Iter++
	if o.ShowMsg && o.Iter%10 == 0 {
		io.Pf("> step %d: E_tot = %v\n", o.Iter, etot)
	}
	return etot
}

// Done reports the stopping condition of spec §5: max_iters reached, or
// (when WallLimit is set) wall-clock expired.
func (o *CPMD) Done() bool {
	if o.Iter >= o.MaxIters {
		return true
	}
	if o.WallLimit > 0 && !o.WallStart.IsZero() && time.Since(o.WallStart) > o.WallLimit {
		return true
	}
	return false
}

// Run drives Step until Done, returning the final total energy. fionOf
// supplies the (external) ionic force for the state about to be stepped;
// it is evaluated once per iteration, immediately before Step.
func (o *CPMD) Run(fionOf func() [][3]float64) (etot float64, err error) {
	if o.MaxIters <= 0 {
		chk.Panic("cpmd.Run: MaxIters must be positive, got %d", o.MaxIters)
	}
	o.WallStart = time.Now()
	for !o.Done() {
		etot = o.Step(fionOf())
	}
	if o.ShowMsg {
		io.PfGreen("> Success: %d steps, E_tot = %v\n", o.Iter, etot)
	}
	return
}

// End writes the final orbital and ion state back through the caller's
// RTDB document -- mirroring gofem FEM.onexit's "save summary, mark clean"
// sequence, generalized to CPMD's energies[]/initialize_wavefunction
// persisted-state contract (spec §6).
func (o *CPMD) End() {
	o.Nwpw.RecordEnergies(o.EnergyHistory)
	o.Nwpw.MarkWavefunctionInitialized()
}
