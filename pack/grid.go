// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pack implements the packed reciprocal-space grid (CGrid/PGrid of
// spec §4.3): selecting, for each Brillouin index, the plane waves within
// the kinetic-energy cutoff, packing them into contiguous vectors, and
// providing the reciprocal-space linear algebra and the batched FFT
// pipeline on top of them. Grounded on
// original_source/Nwpw/nwpwlib/C3dB/Cneb.cpp's packed-vector routines and
// original_source/Nwpw/nwpwlib/C3dB/CStrfac.cpp's index-triple usage.
package pack

import (
	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gopwdft/lattice"
)

// Grid is the packed reciprocal-space grid for every Brillouin-zone sample
// this rank owns. The Gamma-point-vs-k-point behavior (index pairing,
// doubling of inner products) is a static flag resolved at construction,
// per the design note in spec §9 -- never branched on inside inner loops.
type Grid struct {
	Lat   *lattice.Lattice
	Gamma bool // true selects the Gamma-point (real-orbital) convention

	// Per Brillouin index nb: index triples into the 1D phase tables, one
	// entry per retained plane wave. Lengths are Npack[nb].
	IIndx [][]int
	JIndx [][]int
	KIndx [][]int
	Npack []int

	Npack1Max int // max over nb, used as the per-orbital storage stride

	pipeline *pipeline
}

// NewGrid selects, for each Brillouin k-point offset in kpts, the plane
// waves G+k with |G+k|^2 <= ecut, and packs their index triples. For the
// Gamma point (gamma==true, and only then) the Hermitian-pair convention is
// applied: of every (G,-G) pair only the representative with a
// lexicographically non-negative (h,j,l) is kept, since c(-G)=conj(c(G)).
func NewGrid(lat *lattice.Lattice, gamma bool, kpts [][3]float64) *Grid {
	o := &Grid{Lat: lat, Gamma: gamma}
	o.Npack = make([]int, len(kpts))
	o.IIndx = make([][]int, len(kpts))
	o.JIndx = make([][]int, len(kpts))
	o.KIndx = make([][]int, len(kpts))

	radius := lat.EcutRadius()
	nx, ny, nz := lat.Nx, lat.Ny, lat.Nz

	for nb, kpt := range kpts {
		var ii, jj, kk []int
		seen := make(map[[3]int]bool)
		for h := -nx / 2; h < nx-nx/2; h++ {
			for j := -ny / 2; j < ny-ny/2; j++ {
				for l := -nz / 2; l < nz-nz/2; l++ {
					g := lat.GVector(h, j, l)
					gk := [3]float64{g[0] + kpt[0], g[1] + kpt[1], g[2] + kpt[2]}
					g2 := gk[0]*gk[0] + gk[1]*gk[1] + gk[2]*gk[2]
					if g2 > radius {
						continue
					}
					if gamma && !isRepresentative(h, j, l) {
						continue
					}
					key := [3]int{h, j, l}
					if seen[key] {
						continue
					}
					seen[key] = true
					ii = append(ii, wrap(h, nx))
					jj = append(jj, wrap(j, ny))
					kk = append(kk, wrap(l, nz))
				}
			}
		}
		// Ensure G=0 occupies slot 0 when present (the zero-frequency
		// component whose imaginary part must remain zero for Gamma).
		moveZeroFirst(ii, jj, kk)
		o.IIndx[nb] = ii
		o.JIndx[nb] = jj
		o.KIndx[nb] = kk
		o.Npack[nb] = len(ii)
		if len(ii) > o.Npack1Max {
			o.Npack1Max = len(ii)
		}
	}
	o.pipeline = newPipeline(o)
	return o
}

// isRepresentative picks one member of each (G,-G) Hermitian pair: G=0, or
// the first nonzero coordinate of (h,j,l) is positive.
func isRepresentative(h, j, l int) bool {
	if h != 0 {
		return h > 0
	}
	if j != 0 {
		return j > 0
	}
	if l != 0 {
		return l > 0
	}
	return true // the zero-frequency component
}

func wrap(h, n int) int {
	h %= n
	if h < 0 {
		h += n
	}
	return h
}

func moveZeroFirst(ii, jj, kk []int) {
	for idx := range ii {
		if ii[idx] == 0 && jj[idx] == 0 && kk[idx] == 0 {
			ii[0], ii[idx] = ii[idx], ii[0]
			jj[0], jj[idx] = jj[idx], jj[0]
			kk[0], kk[idx] = kk[idx], kk[0]
			return
		}
	}
}

func (o *Grid) checkNb(nb int) {
	if nb < 0 || nb >= len(o.Npack) {
		chk.Panic("brillouin index %d out of range [0,%d)", nb, len(o.Npack))
	}
}

// --- packed-vector linear algebra (§4.3) ---
// Packed vectors are complex, stored as interleaved real pairs of length
// 2*Npack[nb].

// CcPackDot returns the real part of the Hermitian inner product
// sum_g conj(a_g) * b_g.
func (o *Grid) CcPackDot(nb int, a, b []float64) float64 {
	o.checkNb(nb)
	n := o.Npack[nb]
	sum := 0.0
	for g := 0; g < n; g++ {
		ar, ai := a[2*g], a[2*g+1]
		br, bi := b[2*g], b[2*g+1]
		sum += ar*br + ai*bi
	}
	return sum
}

// CcPackIdot is cc_pack_dot with the Gamma-point doubling convention
// applied: 2x the raw dot product, minus the double-counted contribution of
// the zero-frequency component (slot 0, when present and Gamma==true).
func (o *Grid) CcPackIdot(nb int, a, b []float64) float64 {
	raw := o.CcPackDot(nb, a, b)
	if !o.Gamma || o.Npack[nb] == 0 {
		return raw
	}
	zero := a[0]*b[0] + a[1]*b[1]
	return 2*raw - zero
}

// CPackSMul scales a packed vector in place: a <- alpha*a.
func (o *Grid) CPackSMul(nb int, alpha float64, a []float64) {
	o.checkNb(nb)
	n := 2 * o.Npack[nb]
	for i := 0; i < n; i++ {
		a[i] *= alpha
	}
}

// CcPackDaxpy accumulates b <- b + alpha*a over a packed vector.
func (o *Grid) CcPackDaxpy(nb int, alpha float64, a, b []float64) {
	o.checkNb(nb)
	n := 2 * o.Npack[nb]
	for i := 0; i < n; i++ {
		b[i] += alpha * a[i]
	}
}

// CcPackCopy copies a packed vector: b <- a.
func (o *Grid) CcPackCopy(nb int, a, b []float64) {
	o.checkNb(nb)
	copy(b[:2*o.Npack[nb]], a[:2*o.Npack[nb]])
}

// CPackNoImagZero forces the imaginary part of the zero-frequency component
// (packed slot 0) to zero, as required for Gamma-point, real-space
// wavefunctions.
func (o *Grid) CPackNoImagZero(nb int, a []float64) {
	o.checkNb(nb)
	if o.Npack[nb] == 0 {
		return
	}
	a[1] = 0
}
