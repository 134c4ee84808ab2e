// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package device implements the Gdevice capability surface of spec §4.8: a
// uniform interface over a set of batched GEMM shapes plus the eigensolver
// and SVD kernels (the batched 1D FFTs live in package pack), with the real vendor/host decision resolved once at construction (the
// capability-set design note of spec §9). Grounded on
// original_source/Nwpw/nwpwlib/device/gdevices.hpp and gdevices_cuda.hpp.
package device

import "github.com/cpmech/gosl/la"

// Matrix is a dense real matrix, row-major as [][]float64 -- the same shape
// la.MatAlloc returns throughout the teacher's element packages (e.g.
// ele/solid/beam.go's o.K = la.MatAlloc(o.Nu, o.Nu)).
type Matrix = [][]float64

// Identity allocates the n x n identity matrix. It exists so the dense ne x
// ne algebra (MM6, and neb's overlap-matrix bookkeeping) can realize plain
// products and transposes through la.MatTrMulAdd3's C += alpha*tr(A)*B*D
// shape -- the only multi-matrix primitive the teacher's stack exposes --
// rather than a hand-rolled GEMM.
func Identity(n int) Matrix {
	m := la.MatAlloc(n, n)
	la.MatSetDiag(m, 1)
	return m
}

// Device is the capability set every back-end (host BLAS, tiled/streamed)
// must satisfy. A and B arguments are flat real vectors of ne columns, each
// column a packed orbital of length 2*npack (interleaved complex pairs)
// stored contiguously -- the same layout neb.Bundle keeps its psi arrays
// in, so these kernels operate directly on Bundle sub-slices with no copy.
type Device interface {

	// TN1 computes C <- alpha*A^T*B + beta*C, a single ne x ne output.
	TN1(npack, ne int, alpha float64, a, b []float64, beta float64, c Matrix)

	// TN3 computes three fused outputs Caa=A^T*A, Cab=A^T*B, Cbb=B^T*B
	// (upper triangular only; the caller symmetrizes).
	TN3(npack, ne int, a, b []float64, caa, cab, cbb Matrix)

	// TN4 computes four fused outputs Caa=A^T*A, Cab=A^T*B, Cba=B^T*A,
	// Cbb=B^T*B.
	TN4(npack, ne int, a, b []float64, caa, cab, cba, cbb Matrix)

	// NN computes C <- alpha*A*H + beta*C: A holds ne packed columns, H is
	// ne x ne, C holds ne packed columns -- the fmf kernel.
	NN(npack, ne int, alpha float64, a []float64, h Matrix, beta float64, c []float64)

	// MM6 computes the fused six-GEMM accumulation used by the Lagrange
	// multiplier fixed point: sa1 <- s22 + s21*sa0 + sa0*s12 + sa0*(s11*sa0),
	// with st1 as scratch (mirrors Cneb::ggm_lambda's c3db::mygdevice.MM6_dgemm).
	MM6(ne int, s21, s12, s11, sa0, sa1, st1 Matrix)

	// NNEigensolver computes the symmetric eigendecomposition of h (ne x ne,
	// symmetric), returning eigenvalues sorted descending and the matching
	// orthonormal eigenvectors as columns of v.
	NNEigensolver(h Matrix) (eig []float64, v Matrix)

	// SVD computes a = u * diag(s) * v^T.
	SVD(a Matrix) (u Matrix, s []float64, v Matrix)
}
