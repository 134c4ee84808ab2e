// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package strfac implements the per-ion structure factor S_i(G) =
// exp(i*G.R_i), built as the outer product of three 1D phase tables, per
// spec §4.4. Grounded on
// original_source/Nwpw/nwpwlib/C3dB/CStrfac.cpp.
package strfac

import (
	"math"
	"math/cmplx"

	"github.com/cpmech/gopwdft/lattice"
	"github.com/cpmech/gopwdft/pack"
)

// Strfac holds the per-ion 1D phase tables and projects them through the
// packed grid's index triples to assemble S_i(G) on demand.
type Strfac struct {
	lat  *lattice.Lattice
	grid *pack.Grid

	nion int
	rion [][3]float64 // current ion positions, set by Phafac

	// wx1/wy1/wz1[i] has length n_axis, one complex phase value per 1D
	// frequency index (wrapped into [0,n_axis)), for ion i.
	wx1, wy1, wz1 [][]complex128
}

// New builds a Strfac for nion ions over the given lattice and packed grid.
// Call Phafac once ion positions are known (and again after every move).
func New(lat *lattice.Lattice, grid *pack.Grid, nion int) *Strfac {
	return &Strfac{
		lat: lat, grid: grid, nion: nion,
		wx1: make([][]complex128, nion),
		wy1: make([][]complex128, nion),
		wz1: make([][]complex128, nion),
	}
}

// Phafac (re)builds the phase tables from the given ion positions; it must
// be called after every ionic move (spec §4.4, §6).
func (o *Strfac) Phafac(rion [][3]float64) {
	o.rion = rion
	nx, ny, nz := o.lat.Nx, o.lat.Ny, o.lat.Nz
	for i := 0; i < o.nion; i++ {
		gx := [3]float64{o.lat.Unitg[0][0], o.lat.Unitg[0][1], o.lat.Unitg[0][2]}
		gy := [3]float64{o.lat.Unitg[1][0], o.lat.Unitg[1][1], o.lat.Unitg[1][2]}
		gz := [3]float64{o.lat.Unitg[2][0], o.lat.Unitg[2][1], o.lat.Unitg[2][2]}
		o.wx1[i] = phaseTable(nx, dot(gx, rion[i])+math.Pi)
		o.wy1[i] = phaseTable(ny, dot(gy, rion[i])+math.Pi)
		o.wz1[i] = phaseTable(nz, dot(gz, rion[i])+math.Pi)
	}
}

func dot(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

// phaseTable builds one axis's phase table per spec §4.4: seed 1, recur by
// multiplying by exp(i*phi) up to n/2, mirror the conjugate, zero Nyquist.
func phaseTable(n int, phi float64) []complex128 {
	w := make([]complex128, n)
	w[0] = 1
	step := cmplx.Exp(complex(0, phi))
	half := n / 2
	for k := 1; k <= half; k++ {
		w[k] = w[k-1] * step
		if n-k != k {
			w[n-k] = cmplx.Conj(w[k])
		}
	}
	w[half] = 0
	return w
}

// StrfacPack assembles S[g] = wx[i_indx[g]] * wy[j_indx[g]] * wz[k_indx[g]]
// for Brillouin slot nb and ion ii, using the packed grid's index triples
// (spec §4.3/§4.4). Returned as interleaved real pairs, length
// 2*grid.Npack[nb].
func (o *Strfac) StrfacPack(nb, ii int) []float64 {
	ix, jx, kx := o.grid.IIndx[nb], o.grid.JIndx[nb], o.grid.KIndx[nb]
	n := o.grid.Npack[nb]
	out := make([]float64, 2*n)
	wx, wy, wz := o.wx1[ii], o.wy1[ii], o.wz1[ii]
	for g := 0; g < n; g++ {
		s := wx[ix[g]] * wy[jx[g]] * wz[kx[g]]
		out[2*g] = real(s)
		out[2*g+1] = imag(s)
	}
	return out
}
