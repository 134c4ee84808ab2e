// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neb

import (
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/gopwdft/device"
)

// zeroRow extracts the real part of the G=0 packed component (slot 0, the
// first complex pair) of every column of a spin block -- the vector needed
// to undo the rank-1 overcounting that the Gamma-point doubling
// (alpha=2 in the device TN kernels) introduces at G=0 (spec §4.5's
// "Gamma-point doubling" note).
func zeroRow(psi []float64, ne, stride int) []float64 {
	v := make([]float64, ne)
	for i := 0; i < ne; i++ {
		v[i] = psi[i*stride]
	}
	return v
}

// gammaFix turns a raw A^T*B product (computed over every packed component,
// undoubled) into the Gamma-point Hermitian overlap 2*Re<a,b>, minus the
// double-counted G=0 contribution: since a and b are real at G=0 (their
// imaginary part is kept zero by pack.Grid.CPackNoImagZero), that
// contribution is exactly the outer product of their zero-rows.
func gammaFix(raw device.Matrix, av, bv []float64) device.Matrix {
	ne := len(raw)
	out := make(device.Matrix, ne)
	for i := 0; i < ne; i++ {
		out[i] = make([]float64, ne)
		for j := 0; j < ne; j++ {
			out[i][j] = 2*raw[i][j] - av[i]*bv[j]
		}
	}
	return out
}

// transpose realizes tr(m) through la.MatTrMulAdd3's C += alpha*tr(A)*B*D
// shape against the identity (the library's one multi-matrix primitive, see
// device.Identity), rather than a hand-rolled index swap.
func transpose(m device.Matrix) device.Matrix {
	n := len(m)
	ident := device.Identity(n)
	out := la.MatAlloc(n, n)
	la.MatTrMulAdd3(out, 1, m, ident, ident)
	return out
}

// symmetrizeUpper mirrors TN3/TN4's upper-triangle-only output into the
// lower triangle. This is a triangular element copy, not a dense-matrix
// arithmetic reduction, and has no la counterpart in the teacher's stack
// (Cneb.cpp performs the same mirroring by hand at the call site).
func symmetrizeUpper(h device.Matrix) {
	n := len(h)
	for k := 0; k < n; k++ {
		for j := k + 1; j < n; j++ {
			h[j][k] = h[k][j]
		}
	}
}

// ggmSingle computes H = <a,b> (TN1-shaped) for one spin's columns, applying
// the Gamma doubling correction when the bundle is Gamma-point.
func (b *Bundle) ggmSingle(nbq, ms int, a, c [][2][]float64) device.Matrix {
	ne := b.Ne[ms]
	stride := b.stride(nbq)
	npack := b.Grid.Npack[nbq]
	raw := make(device.Matrix, ne)
	for i := range raw {
		raw[i] = make([]float64, ne)
	}
	b.Dev.TN1(npack, ne, 1.0, a[nbq][ms], c[nbq][ms], 0.0, raw)
	if !b.Gamma {
		return raw
	}
	av := zeroRow(a[nbq][ms], ne, stride)
	cv := zeroRow(c[nbq][ms], ne, stride)
	return gammaFix(raw, av, cv)
}

// GGMMultiply implements ggm_Multiply(a,b,H): H_ij = 2*Re<a_i,b_j> per spin
// block, for every Brillouin slot owned locally. Returns one matrix per spin
// (summed over Brillouin slots, matching the single-Brillouin scope this
// package targets at the top-level integrator).
func (b *Bundle) GGMMultiply(a, c [][2][]float64) [2]device.Matrix {
	var out [2]device.Matrix
	for ms := 0; ms < b.Ispin; ms++ {
		ne := b.Ne[ms]
		sum := make(device.Matrix, ne)
		for i := range sum {
			sum[i] = make([]float64, ne)
		}
		for nbq := range a {
			h := b.ggmSingle(nbq, ms, a, c)
			for i := 0; i < ne; i++ {
				for j := 0; j < ne; j++ {
					sum[i][j] += h[i][j]
				}
			}
		}
		out[ms] = sum
	}
	return out
}

// GGMSymMultiply is ggm_Multiply followed by symmetrizing the upper triangle
// into the lower (spec §4.5).
func (b *Bundle) GGMSymMultiply(a, c [][2][]float64) [2]device.Matrix {
	out := b.GGMMultiply(a, c)
	for ms := 0; ms < b.Ispin; ms++ {
		symmetrizeUpper(out[ms])
	}
	return out
}

// FFMMultiply is ggm_Multiply restricted to one spin (mb=-1 means all
// spins, returned as a slice indexed by ms).
func (b *Bundle) FFMMultiply(mb int, a, c [][2][]float64) [2]device.Matrix {
	full := b.GGMMultiply(a, c)
	if mb == -1 {
		return full
	}
	var out [2]device.Matrix
	out[mb] = full[mb]
	return out
}

// FFMSymMultiply is FFMMultiply then upper-to-lower symmetrization.
func (b *Bundle) FFMSymMultiply(mb int, a, c [][2][]float64) [2]device.Matrix {
	out := b.FFMMultiply(mb, a, c)
	for ms := 0; ms < b.Ispin; ms++ {
		if out[ms] != nil {
			symmetrizeUpper(out[ms])
		}
	}
	return out
}

// overlapTriple is the fused s11=a.a, s21=b.a, s22=b.b of ffm3_sym_Multiply,
// for a single spin block and the sum over Brillouin slots.
func (b *Bundle) overlapTriple(ms int, a, c [][2][]float64) (s11, s21, s22 device.Matrix) {
	ne := b.Ne[ms]
	s11 = zeroMat(ne)
	s21 = zeroMat(ne)
	s22 = zeroMat(ne)
	for nbq := range a {
		stride := b.stride(nbq)
		npack := b.Grid.Npack[nbq]
		caaRaw := zeroMat(ne)
		cabRaw := zeroMat(ne) // A^T B
		cbbRaw := zeroMat(ne)
		b.Dev.TN3(npack, ne, a[nbq][ms], c[nbq][ms], caaRaw, cabRaw, cbbRaw)
		// TN3 only fills the upper triangle (spec §4.5); mirror before use.
		symmetrizeUpper(caaRaw)
		symmetrizeUpper(cbbRaw)

		if b.Gamma {
			av := zeroRow(a[nbq][ms], ne, stride)
			cv := zeroRow(c[nbq][ms], ne, stride)
			caaRaw = gammaFix(caaRaw, av, av)
			cbbRaw = gammaFix(cbbRaw, cv, cv)
			cabRaw = gammaFix(cabRaw, av, cv)
		}
		addInto(s11, caaRaw)
		addInto(s22, cbbRaw)
		// s21 = b.a = (a^T b)^T = cab^T
		addInto(s21, transpose(cabRaw))
	}
	return s11, s21, s22
}

func zeroMat(n int) device.Matrix {
	return la.MatAlloc(n, n)
}

// addInto realizes dst += src as dst += tr(I)*src*I through
// la.MatTrMulAdd3, matching the rest of the dense ne x ne layer.
func addInto(dst, src device.Matrix) {
	ident := device.Identity(len(dst))
	la.MatTrMulAdd3(dst, 1, ident, src, ident)
}

// overlapQuad is the fused s11=a.a, s12=a.b, s21=b.a, s22=b.b of
// ffm4_sym_Multiply, for a single spin block and the sum over Brillouin
// slots -- the four-overlap counterpart of overlapTriple used by
// ggm_lambda_sic, where s12 and s21 are genuinely distinct (spec §4.6's SIC
// note; Cneb.cpp:2436-2439).
func (b *Bundle) overlapQuad(ms int, a, c [][2][]float64) (s11, s12, s21, s22 device.Matrix) {
	ne := b.Ne[ms]
	s11 = zeroMat(ne)
	s12 = zeroMat(ne)
	s21 = zeroMat(ne)
	s22 = zeroMat(ne)
	for nbq := range a {
		stride := b.stride(nbq)
		npack := b.Grid.Npack[nbq]
		caaRaw := zeroMat(ne)
		cabRaw := zeroMat(ne) // a.b, indexed directly: cab[p][q] = <a_p,b_q>
		cbaRaw := zeroMat(ne) // b.a, indexed directly: cba[p][q] = <b_p,a_q>
		cbbRaw := zeroMat(ne)
		b.Dev.TN4(npack, ne, a[nbq][ms], c[nbq][ms], caaRaw, cabRaw, cbaRaw, cbbRaw)
		symmetrizeUpper(caaRaw)
		symmetrizeUpper(cbbRaw)

		if b.Gamma {
			av := zeroRow(a[nbq][ms], ne, stride)
			cv := zeroRow(c[nbq][ms], ne, stride)
			caaRaw = gammaFix(caaRaw, av, av)
			cbbRaw = gammaFix(cbbRaw, cv, cv)
			cabRaw = gammaFix(cabRaw, av, cv)
			cbaRaw = gammaFix(cbaRaw, cv, av)
		}
		addInto(s11, caaRaw)
		addInto(s22, cbbRaw)
		addInto(s12, cabRaw)
		addInto(s21, cbaRaw)
	}
	return s11, s12, s21, s22
}

// FMFMultiply implements fmf_Multiply(mb, psi, H, alpha, out, beta):
// out <- alpha*psi*H + beta*out, per spin block (mb=-1 means all spins).
func (b *Bundle) FMFMultiply(mb int, psi [][2][]float64, hml [2]device.Matrix, alpha float64, out [][2][]float64, beta float64) {
	ms1, ms2 := mb, mb+1
	if mb == -1 {
		ms1, ms2 = 0, b.Ispin
	}
	for ms := ms1; ms < ms2; ms++ {
		ne := b.Ne[ms]
		for nbq := range psi {
			npack := b.Grid.Npack[nbq]
			b.Dev.NN(npack, ne, alpha, psi[nbq][ms], hml[ms], beta, out[nbq][ms])
		}
	}
}
