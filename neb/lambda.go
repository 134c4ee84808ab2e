// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neb

import (
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"

	"github.com/cpmech/gopwdft/device"
)

// Fixed-point iteration constants for ggm_lambda, carried over verbatim from
// the teacher (spec §4.6).
const (
	iterlmd   = 220
	convglmd  = 1e-15
	convglmd2 = 1e-12
)

// scaleOverlaps applies the fixed-point identity's diagonal/off-diagonal
// scaling of spec §4.6 step 2, in place.
func scaleOverlaps(dt float64, s11, s21, s22 device.Matrix) {
	ne := len(s22)
	for i := 0; i < ne; i++ {
		for j := 0; j < ne; j++ {
			if i == j {
				s22[i][j] = (1 - s22[i][j]) * (0.5 / dt)
				s21[i][j] = (1 - s21[i][j]) * 0.5
				s11[i][j] = s11[i][j] * (-0.5 * dt)
			} else {
				s22[i][j] *= -0.5 / dt
				s21[i][j] *= -0.5
				s11[i][j] *= -0.5 * dt
			}
		}
	}
}

func cloneMat(m device.Matrix) device.Matrix {
	out := la.MatAlloc(len(m), len(m))
	la.MatCopy(out, 1, m)
	return out
}

// maxAbsDiff is the fixed-point iteration's convergence check: the largest
// absolute entry of a-b, via la.MatLargest over a difference built from the
// same tr(I)*X*I accumulation the rest of this package uses.
func maxAbsDiff(a, b device.Matrix) float64 {
	n := len(a)
	diff := cloneMat(a)
	ident := device.Identity(n)
	la.MatTrMulAdd3(diff, -1, ident, b, ident) // diff = a - b
	return la.MatLargest(diff, 1)
}

// GGMLambda implements ggm_lambda(dt, psi1, psi2, Lambda) (spec §4.6): it
// restores orthonormality after a Verlet half-step by solving the
// fixed-point identity for the Lagrange multiplier matrix, then applies the
// constraint correction psi2 <- psi2 + dt*psi1*Lambda.
func (b *Bundle) GGMLambda(dt float64, psi1, psi2 [][2][]float64) [2]device.Matrix {
	var lmbda [2]device.Matrix
	for ms := 0; ms < b.Ispin; ms++ {
		s11, s21, s22 := b.overlapTriple(ms, psi1, psi2)
		scaleOverlaps(dt, s11, s21, s22)

		s12 := cloneMat(s21)
		sa0 := cloneMat(s22)
		ne := len(s22)
		st1 := zeroMat(ne)

		var sa1 device.Matrix
		adiff := 0.0
		done := false
		ii := 0
		for !done && ii < iterlmd {
			ii++
			sa1 = cloneMat(s22)
			b.Dev.MM6(ne, s21, s12, s11, sa0, sa1, st1)
			adiff = maxAbsDiff(sa1, sa0)
			if adiff < convglmd {
				done = true
			} else {
				sa0 = cloneMat(sa1)
			}
		}
		if !done && adiff >= convglmd2 {
			io.Pf("ggm_lambda: Lambda iteration did not converge (spin=%d, adiff=%v, iters=%d)\n", ms, adiff, ii)
		}
		lmbda[ms] = sa1
	}
	b.FMFMultiply(-1, psi1, lmbda, dt, psi2, 1.0)
	return lmbda
}

// kirilBTransform implements the self-interaction-correction symmetrization
// (s12,s21) <- ((s12+s21)/2, (s12+s21)/2) used by ggm_lambda_sic.
func kirilBTransform(s12, s21 device.Matrix) {
	ne := len(s12)
	for i := 0; i < ne; i++ {
		for j := 0; j < ne; j++ {
			avg := 0.5 * (s12[i][j] + s21[i][j])
			s12[i][j] = avg
			s21[i][j] = avg
		}
	}
}

// GGMLambdaSic is the ggm_lambda variant used when the external operator is
// non-Hermitian across orbitals (self-interaction correction): it forms all
// four genuinely distinct cross overlaps via overlapQuad (ffm4_sym_Multiply,
// Cneb.cpp:2436-2439) and Kiril-B-symmetrizes s12/s21 before the same
// fixed-point iteration.
func (b *Bundle) GGMLambdaSic(dt float64, psi1, psi2 [][2][]float64) [2]device.Matrix {
	var lmbda [2]device.Matrix
	for ms := 0; ms < b.Ispin; ms++ {
		s11, s12, s21, s22 := b.overlapQuad(ms, psi1, psi2)
		kirilBTransform(s12, s21)
		scaleOverlaps(dt, s11, s21, s22)
		// s12 == s21 after Kiril-B symmetrization, so the scaling scaleOverlaps
		// just applied to s21 applies identically to s12; re-copy rather than
		// scale it a second time, matching the original's memcpy(s12, s21)
		// placed after the scaling step.
		la.MatCopy(s12, 1, s21)

		sa0 := cloneMat(s22)
		ne := len(s22)
		st1 := zeroMat(ne)

		var sa1 device.Matrix
		adiff := 0.0
		done := false
		ii := 0
		for !done && ii < iterlmd {
			ii++
			sa1 = cloneMat(s22)
			b.Dev.MM6(ne, s21, s12, s11, sa0, sa1, st1)
			adiff = maxAbsDiff(sa1, sa0)
			if adiff < convglmd {
				done = true
			} else {
				sa0 = cloneMat(sa1)
			}
		}
		if !done && adiff >= convglmd2 {
			io.Pf("ggm_lambda_sic: Lambda iteration did not converge (spin=%d, adiff=%v, iters=%d)\n", ms, adiff, ii)
		}
		lmbda[ms] = sa1
	}
	b.FMFMultiply(-1, psi1, lmbda, dt, psi2, 1.0)
	return lmbda
}
