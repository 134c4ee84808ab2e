// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lattice holds the real-space cell, its reciprocal vectors, and the
// FFT grid / kinetic-energy cutoff that selects retained plane waves, per
// spec §3 (Lattice) and §4 (component design).
package lattice

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// TwoPi is 2*pi, used throughout the unita*unitg^T = 2*pi*I identity.
const TwoPi = 2.0 * math.Pi

// Lattice holds the real-space cell, the derived reciprocal cell, the FFT
// grid sizes, and the plane-wave cutoffs.
type Lattice struct {
	Unita [3][3]float64 // real-space cell vectors, row-major: Unita[row][xyz]
	Unitg [3][3]float64 // reciprocal cell vectors, Unita . Unitg^T = 2*pi*I
	Omega float64       // cell volume

	Ecut float64 // orbital kinetic-energy cutoff (Rydberg)
	Wcut float64 // density kinetic-energy cutoff (Rydberg)

	Nx, Ny, Nz int // FFT grid sizes
}

// New builds a Lattice from the real-space cell vectors and derives the
// reciprocal cell, volume, and FFT grid. ecut/wcut are in Rydberg.
func New(unita [3][3]float64, ecut, wcut float64, nx, ny, nz int) *Lattice {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		chk.Panic("FFT grid sizes must be positive: got (%d,%d,%d)", nx, ny, nz)
	}
	o := &Lattice{Unita: unita, Ecut: ecut, Wcut: wcut, Nx: nx, Ny: ny, Nz: nz}
	o.Omega = det3(unita)
	if math.Abs(o.Omega) < 1e-12 {
		chk.Panic("unita is singular: det=%v", o.Omega)
	}
	o.Unitg = reciprocal(unita, o.Omega)
	return o
}

// det3 returns the determinant of a 3x3 matrix stored row-major.
func det3(a [3][3]float64) float64 {
	return a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
		a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])
}

// reciprocal computes unitg such that unita . unitg^T = 2*pi*I, via the
// standard cross-product construction scaled by 2*pi/omega.
func reciprocal(a [3][3]float64, omega float64) (g [3][3]float64) {
	cross := func(u, v [3]float64) [3]float64 {
		return [3]float64{
			u[1]*v[2] - u[2]*v[1],
			u[2]*v[0] - u[0]*v[2],
			u[0]*v[1] - u[1]*v[0],
		}
	}
	b0 := cross(a[1], a[2])
	b1 := cross(a[2], a[0])
	b2 := cross(a[0], a[1])
	scale := TwoPi / omega
	for k := 0; k < 3; k++ {
		g[0][k] = b0[k] * scale
		g[1][k] = b1[k] * scale
		g[2][k] = b2[k] * scale
	}
	return
}

// GVector returns the reciprocal-space wavevector G = h*unitg[0] +
// k*unitg[1] + l*unitg[2] for FFT grid indices (h,k,l), which may be
// negative (the convention the packed grid resolves into [-n/2, n/2)).
func (o *Lattice) GVector(h, k, l int) [3]float64 {
	var g [3]float64
	for c := 0; c < 3; c++ {
		g[c] = float64(h)*o.Unitg[0][c] + float64(k)*o.Unitg[1][c] + float64(l)*o.Unitg[2][c]
	}
	return g
}

// Gsqr returns |G(h,k,l)|^2.
func (o *Lattice) Gsqr(h, k, l int) float64 {
	g := o.GVector(h, k, l)
	return g[0]*g[0] + g[1]*g[1] + g[2]*g[2]
}

// EcutRadius returns the cutoff radius in reciprocal space: G^2 <= ecut
// (Rydberg atomic-unit convention, hbar^2/2m = 1).
func (o *Lattice) EcutRadius() float64 { return o.Ecut }

// WcutRadius is the density-grid analogue of EcutRadius.
func (o *Lattice) WcutRadius() float64 { return o.Wcut }

// N2FT3D returns the padded real-array length used by in-place real<->complex
// FFT buffers: 2 * nx/2+1 rounded up to nx, times ny*nz -- the same
// convention gdevices.hpp assumes for its batched 1D transforms along x.
func (o *Lattice) N2FT3D() int {
	return 2 * (o.Nx/2 + 1) * o.Ny * o.Nz
}

// Nfft3D is the unpadded element count of the full FFT grid, nx*ny*nz.
func (o *Lattice) Nfft3D() int {
	return o.Nx * o.Ny * o.Nz
}
