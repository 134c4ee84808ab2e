// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import "github.com/cpmech/gopwdft/pack"

// HarmonicKinetic is a Kinetic test double: T(G) = 0.5*|G|^2/mass, applied
// diagonally in packed reciprocal space. It exists only to exercise the
// cpmd integrator's energy-conservation test (spec §8 scenario S3/property
// 8) without depending on a real plane-wave pseudopotential stack.
type HarmonicKinetic struct {
	Grid *pack.Grid
	Nb   int
	Mass float64
}

func (o *HarmonicKinetic) KeAve(psi []float64) float64 {
	return 0.5 * o.KeApply2(psi)
}

// KeApply2 returns <psi|T|psi> directly (used by KeAve and by the energy
// accumulator in cpmd), avoiding a round trip through KeApply.
func (o *HarmonicKinetic) KeApply2(psi []float64) float64 {
	grid := o.Grid
	ii, jj, kk := grid.IIndx[o.Nb], grid.JIndx[o.Nb], grid.KIndx[o.Nb]
	nx, ny, nz := grid.Lat.Nx, grid.Lat.Ny, grid.Lat.Nz
	sum := 0.0
	for g := 0; g < grid.Npack[o.Nb]; g++ {
		h := unwrapIndex(ii[g], nx)
		j := unwrapIndex(jj[g], ny)
		l := unwrapIndex(kk[g], nz)
		gv := grid.Lat.GVector(h, j, l)
		g2 := gv[0]*gv[0] + gv[1]*gv[1] + gv[2]*gv[2]
		w := psi[2*g]*psi[2*g] + psi[2*g+1]*psi[2*g+1]
		if g > 0 {
			w *= 2 // Gamma-point doubling: every packed g>0 represents a (G,-G) pair
		}
		sum += 0.5 * g2 / o.Mass * w
	}
	return sum
}

func (o *HarmonicKinetic) KeApply(psi, out []float64) {
	grid := o.Grid
	ii, jj, kk := grid.IIndx[o.Nb], grid.JIndx[o.Nb], grid.KIndx[o.Nb]
	nx, ny, nz := grid.Lat.Nx, grid.Lat.Ny, grid.Lat.Nz
	for g := 0; g < grid.Npack[o.Nb]; g++ {
		h := unwrapIndex(ii[g], nx)
		j := unwrapIndex(jj[g], ny)
		l := unwrapIndex(kk[g], nz)
		gv := grid.Lat.GVector(h, j, l)
		g2 := gv[0]*gv[0] + gv[1]*gv[1] + gv[2]*gv[2]
		t := g2 / o.Mass
		out[2*g] = t * psi[2*g]
		out[2*g+1] = t * psi[2*g+1]
	}
}

func unwrapIndex(w, n int) int {
	if w > n/2 {
		return w - n
	}
	return w
}

// HarmonicPotential is a Pseudopotential test double implementing an
// isotropic harmonic well V(r) = 0.5*Omega^2*|r-r0|^2 centered on the cell,
// with no non-local projector term.
type HarmonicPotential struct {
	Nx, Ny, Nz int
	Cell       [3]float64 // real-space cell lengths, for centering
	Omega      float64
}

func (o *HarmonicPotential) VNonlocalApply(psi, out []float64) {
	for i := range out {
		out[i] = 0
	}
}

func (o *HarmonicPotential) VLocalAdd(outReal []float64) {
	cx, cy, cz := o.Cell[0]/2, o.Cell[1]/2, o.Cell[2]/2
	idx := 0
	for k := 0; k < o.Nz; k++ {
		z := float64(k)/float64(o.Nz)*o.Cell[2] - cz
		for j := 0; j < o.Ny; j++ {
			y := float64(j)/float64(o.Ny)*o.Cell[1] - cy
			for i := 0; i < o.Nx; i++ {
				x := float64(i)/float64(o.Nx)*o.Cell[0] - cx
				r2 := x*x + y*y + z*z
				outReal[idx] += 0.5 * o.Omega * o.Omega * r2
				idx++
			}
		}
	}
}

func (o *HarmonicPotential) Zv(katm int) float64 { return 0 }

// NullCoulomb and NullXC are zero-valued Coulomb/XC test doubles, used
// alongside HarmonicKinetic/HarmonicPotential so the single-particle
// harmonic-oscillator scenario has no Hartree or exchange-correlation
// contribution.
type NullCoulomb struct{}

func (NullCoulomb) VHartree(density, outReal []float64) {
	for i := range outReal {
		outReal[i] = 0
	}
}

type NullXC struct{}

func (NullXC) VXC(density, outReal []float64) {
	for i := range outReal {
		outReal[i] = 0
	}
}
