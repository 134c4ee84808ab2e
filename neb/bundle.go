// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package neb implements the distributed orbital bundle (spec §4.5–§4.7):
// the wavefunction algebra over packed reciprocal-space columns, modified
// Gram-Schmidt orthogonalization, and the Lagrange-multiplier fixed point
// that restores orthonormality after a Verlet half-step. Grounded on
// original_source/Nwpw/nwpwlib/C3dB/Cneb.cpp (the inheritance chain
// collapsed to composition per the design note of spec §9: a Bundle *has* a
// pack.Grid and a device.Device, both injected at construction).
package neb

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gopwdft/device"
	"github.com/cpmech/gopwdft/pack"
)

// Bundle owns every locally held orbital, spin block by spin block, Brillouin
// slot by Brillouin slot. Psi[nbq][ms] is a flat array of ne[ms] packed
// columns, each of length 2*grid.Npack[nbq] (interleaved complex pairs),
// stored contiguously -- matching the storage contract of spec §4.5's table.
type Bundle struct {
	Grid  *pack.Grid
	Dev   device.Device
	Gamma bool
	Ispin int
	Ne    [2]int

	// W[nbq] is the Brillouin-zone weight used by gg_traceall; it defaults
	// to 1 for every slot (the external collaborator may override it).
	W []float64

	Psi [][2][]float64
}

// New allocates a Bundle with zeroed orbitals for every (nbq, ms, column).
func New(grid *pack.Grid, dev device.Device, gamma bool, ispin int, ne [2]int) *Bundle {
	nbrillq := len(grid.Npack)
	b := &Bundle{Grid: grid, Dev: dev, Gamma: gamma, Ispin: ispin, Ne: ne}
	b.W = make([]float64, nbrillq)
	b.Psi = make([][2][]float64, nbrillq)
	for nbq := 0; nbq < nbrillq; nbq++ {
		b.W[nbq] = 1.0
		stride := 2 * grid.Npack[nbq]
		for ms := 0; ms < ispin; ms++ {
			b.Psi[nbq][ms] = make([]float64, ne[ms]*stride)
		}
	}
	return b
}

// AllocPsi allocates a zeroed orbital buffer with the same shape as b.Psi --
// used by the Verlet integrator to carry the psi0/psi1/psi2 history buffers
// spec §4.9 rotates between.
func (b *Bundle) AllocPsi() [][2][]float64 {
	nbrillq := len(b.Grid.Npack)
	psi := make([][2][]float64, nbrillq)
	for nbq := 0; nbq < nbrillq; nbq++ {
		stride := b.stride(nbq)
		for ms := 0; ms < b.Ispin; ms++ {
			psi[nbq][ms] = make([]float64, b.Ne[ms]*stride)
		}
	}
	return psi
}

func (b *Bundle) stride(nbq int) int { return 2 * b.Grid.Npack[nbq] }

// Column returns the nth packed column (length stride) of spin ms, Brillouin
// slot nbq, as a sub-slice sharing storage with psi.
func (b *Bundle) Column(psi [][2][]float64, nbq, ms, n int) []float64 {
	stride := b.stride(nbq)
	return psi[nbq][ms][n*stride : (n+1)*stride]
}

// --- elementary wavefunction algebra (spec §4.5) ---

// GCopy implements gg_copy: b <- a.
func GCopy(a, b [][2][]float64) {
	for nbq := range a {
		for ms := range a[nbq] {
			copy(b[nbq][ms], a[nbq][ms])
		}
	}
}

// GSMul implements gg_SMul: b <- alpha*a.
func GSMul(alpha float64, a, b [][2][]float64) {
	for nbq := range a {
		for ms := range a[nbq] {
			av, bv := a[nbq][ms], b[nbq][ms]
			for i := range av {
				bv[i] = alpha * av[i]
			}
		}
	}
}

// GScale implements g_Scale: a <- alpha*a.
func GScale(alpha float64, a [][2][]float64) {
	for nbq := range a {
		for ms := range a[nbq] {
			av := a[nbq][ms]
			for i := range av {
				av[i] *= alpha
			}
		}
	}
}

// GGSum2 implements gg_Sum2: b <- b + a.
func GGSum2(a, b [][2][]float64) {
	for nbq := range a {
		for ms := range a[nbq] {
			av, bv := a[nbq][ms], b[nbq][ms]
			for i := range av {
				bv[i] += av[i]
			}
		}
	}
}

// GGMinus2 implements gg_Minus2: b <- b - a.
func GGMinus2(a, b [][2][]float64) {
	for nbq := range a {
		for ms := range a[nbq] {
			av, bv := a[nbq][ms], b[nbq][ms]
			for i := range av {
				bv[i] -= av[i]
			}
		}
	}
}

// GGGMinus implements ggg_Minus: c <- a - b.
func GGGMinus(a, b, c [][2][]float64) {
	for nbq := range a {
		for ms := range a[nbq] {
			av, bv, cv := a[nbq][ms], b[nbq][ms], c[nbq][ms]
			for i := range av {
				cv[i] = av[i] - bv[i]
			}
		}
	}
}

// GGDaxpy implements gg_daxpy: b <- b + alpha*a.
func GGDaxpy(alpha float64, a, b [][2][]float64) {
	for nbq := range a {
		for ms := range a[nbq] {
			av, bv := a[nbq][ms], b[nbq][ms]
			for i := range av {
				bv[i] += alpha * av[i]
			}
		}
	}
}

// GZero implements g_zero: a <- 0.
func GZero(a [][2][]float64) {
	for nbq := range a {
		for ms := range a[nbq] {
			av := a[nbq][ms]
			for i := range av {
				av[i] = 0
			}
		}
	}
}

// GGTraceAll implements gg_traceall: sum_{nbq,ms,n} w(nbq)*<a,b>, doubled for
// a spin-restricted (ispin==1) calculation per spec §4.5.
func (b *Bundle) GGTraceAll(a, c [][2][]float64) float64 {
	grid := b.Grid
	total := 0.0
	for nbq := range a {
		stride := b.stride(nbq)
		for ms := range a[nbq] {
			av, cv := a[nbq][ms], c[nbq][ms]
			n := len(av) / stride
			for col := 0; col < n; col++ {
				ac := av[col*stride : (col+1)*stride]
				cc := cv[col*stride : (col+1)*stride]
				total += b.W[nbq] * grid.CcPackIdot(nbq, ac, cc)
			}
		}
	}
	if b.Ispin == 1 {
		total *= 2
	}
	return total
}

// GOrtho implements g_ortho (spec §4.6): modified Gram-Schmidt across all
// orbitals within each spin, independently per Brillouin slot. Iteration
// runs k = ne[ms]-1 down to 0, normalizing psi_k then projecting it out of
// every earlier column -- reverse order is required so a column being
// projected against has already been finalized (spec §4.6's tie-break).
func (b *Bundle) GOrtho(psi [][2][]float64) {
	grid := b.Grid
	for nbq := range psi {
		for ms := 0; ms < b.Ispin; ms++ {
			ne := b.Ne[ms]
			for k := ne - 1; k >= 0; k-- {
				pk := b.Column(psi, nbq, ms, k)
				w := grid.CcPackIdot(nbq, pk, pk)
				w = 1.0 / math.Sqrt(w)
				grid.CPackSMul(nbq, w, pk)
				if b.Gamma {
					// re-enforce the real-G=0 invariant overlap.go's gammaFix
					// relies on: CcPackIdot's own normalization folds in a
					// possibly-nonzero G=0 imaginary part, so it must be
					// cleared again after scaling, not just after an FFT.
					grid.CPackNoImagZero(nbq, pk)
				}
				for j := k - 1; j >= 0; j-- {
					pj := b.Column(psi, nbq, ms, j)
					proj := -grid.CcPackIdot(nbq, pk, pj)
					grid.CcPackDaxpy(nbq, proj, pk, pj)
				}
			}
		}
	}
}

func (b *Bundle) checkSpin(ms int) {
	if ms < 0 || ms >= b.Ispin {
		chk.Panic("spin index %d out of range [0,%d)", ms, b.Ispin)
	}
}
