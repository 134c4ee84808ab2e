// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package operator defines the external collaborator contracts of spec §6:
// the physics terms (kinetic, Coulomb, exchange-correlation, local and
// non-local pseudopotential, Ewald) the CPMD integrator calls into but does
// not itself implement. Grounded on the Kinetic/Coulomb/
// exchange_correlation/Pseudopotential/Ewald includes of
// original_source/Nwpw/pspw/cpsd/cpmd.cpp.
package operator

import "github.com/cpmech/gopwdft/pack"

// Kinetic computes the kinetic-energy operator T-hat on packed orbitals.
type Kinetic interface {
	KeAve(psi []float64) float64
	KeApply(psi, out []float64)
}

// Coulomb computes the Hartree potential from a real-space density.
type Coulomb interface {
	VHartree(density, outReal []float64)
}

// XC computes the exchange-correlation potential from a real-space density.
type XC interface {
	VXC(density, outReal []float64)
}

// Pseudopotential applies the local and non-local pseudopotential terms.
type Pseudopotential interface {
	VNonlocalApply(psi, out []float64)
	VLocalAdd(outReal []float64)
	Zv(katm int) float64
}

// Ewald computes the ion-ion electrostatic energy and force.
type Ewald interface {
	Phafac()
	Energy() float64
	Force(out [][3]float64)
}

// Hamiltonian bundles every per-orbital potential term the Verlet step
// needs into the single Hpsi = T*psi + (Vxc+VH+Vloc)*psi + V_NL*psi of
// spec §4.9 step 1.
type Hamiltonian struct {
	Grid  *pack.Grid
	Kin   Kinetic
	Coul  Coulomb
	Xc    XC
	Pseud Pseudopotential
}

// Apply computes Hpsi in packed form for one orbital column, given potReal,
// the combined local real-space potential Vxc+VH+Vloc.
func (o *Hamiltonian) Apply(nb int, psi []float64, potReal []float64, hpsi []float64) {
	o.Kin.KeApply(psi, hpsi)

	vpsiR := o.Grid.CrPfft3bDirect(nb, psi)
	for i := range vpsiR {
		vpsiR[i] *= potReal[i]
	}
	vpsiG := o.Grid.RcFft3d(nb, vpsiR)
	o.Grid.CcPackDaxpy(nb, 1.0, vpsiG, hpsi)

	nl := make([]float64, len(hpsi))
	o.Pseud.VNonlocalApply(psi, nl)
	o.Grid.CcPackDaxpy(nb, 1.0, nl, hpsi)
}
