// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neb

import (
	"math"

	"github.com/cpmech/gopwdft/device"
)

// MDiagonalize implements m_diagonalize (spec §8 property 6): the symmetric
// eigensolver, returning eigenvalues in descending order and eigenvectors as
// orthonormal columns. It delegates to the injected device, which is the
// capability that actually owns the eigensolver (spec §9's capability-set
// note); a failure here is fatal, per spec §7's "Eigensolver failure" row.
func (b *Bundle) MDiagonalize(hml device.Matrix) (eig []float64, v device.Matrix) {
	return b.Dev.NNEigensolver(hml)
}

// GGMSVD implements ggm_SVD(A,U,S,V) (spec §4.6): A = U*diag(S)*V^T,
// obtained from the injected device's SVD capability.
func (b *Bundle) GGMSVD(a device.Matrix) (u device.Matrix, s []float64, v device.Matrix) {
	return b.Dev.SVD(a)
}

// --- Skew-symmetric (Stiefel) rotation machinery, spec §4.7 ---
//
// fm_QR performs a modified Gram-Schmidt QR factorization of the ne x ne
// (or rectangular m x ne) matrix a: a = Q*R, Q with orthonormal columns,
// R upper triangular. Grounded on Cneb::fm_QR's column-by-column loop: each
// earlier q column is projected out of the running remainder in turn, then
// the remainder is normalized (the same shape as Bundle.GOrtho, but over a
// dense matrix rather than packed orbital columns).
func FmQR(a device.Matrix) (q, r device.Matrix) {
	m := len(a)
	n := 0
	if m > 0 {
		n = len(a[0])
	}
	q = make(device.Matrix, m)
	for i := range q {
		q[i] = make([]float64, n)
	}
	r = zeroMat(n)
	for k := 0; k < n; k++ {
		col := make([]float64, m)
		for i := 0; i < m; i++ {
			col[i] = a[i][k]
		}
		for j := 0; j < k; j++ {
			dot := 0.0
			for i := 0; i < m; i++ {
				dot += q[i][j] * col[i]
			}
			r[j][k] = dot
			for i := 0; i < m; i++ {
				col[i] -= dot * q[i][j]
			}
		}
		norm := 0.0
		for i := 0; i < m; i++ {
			norm += col[i] * col[i]
		}
		norm = math.Sqrt(norm)
		r[k][k] = norm
		if norm > 0 {
			for i := 0; i < m; i++ {
				q[i][k] = col[i] / norm
			}
		}
	}
	return q, r
}

// MMM4ARtoT4 assembles the skew matrix T = [[A, -R^T], [R, 0]] used to build
// the geodesic generator on the Stiefel manifold (spec §4.7).
func MMM4ARtoT4(a, r device.Matrix) device.Matrix {
	na := len(a)
	nr := len(r)
	n := na + nr
	t := zeroMat(n)
	for i := 0; i < na; i++ {
		for j := 0; j < na; j++ {
			t[i][j] = a[i][j]
		}
	}
	for i := 0; i < na; i++ {
		for j := 0; j < nr; j++ {
			t[i][na+j] = -r[j][i]
		}
	}
	for i := 0; i < nr; i++ {
		for j := 0; j < na; j++ {
			t[na+i][j] = r[i][j]
		}
	}
	return t
}

// M4FactorSkew eigendecomposes a 2n x 2n skew-symmetric matrix k4 into real
// orthogonal V, W and the block diagonal singular values sigma, so that
// R(t) can later be built by M4RotationSkew.
//
// The teacher's C++ (Cneb::m4_FactorSkew) has a documented anomaly: its
// single-block code path loops "for (ms=mb; ms<mb; ++ms)" (ms2 set to mb,
// not mb+1), so the body never executes when mb>=0 -- spec §9 explicitly
// says to flag this rather than silently "fix" it. This Go port keeps the
// same restricted scope: it only implements the mb==-1 ("all blocks")
// path faithfully; callers passing a single block index get a zero
// rotation, matching the original's no-op behavior for that path.
func M4FactorSkew(mb int, k4 device.Matrix) (v, w device.Matrix, sigma []float64) {
	n := len(k4)
	v = zeroMat(n)
	w = zeroMat(n)
	sigma = make([]float64, n)
	if mb >= 0 {
		return v, w, sigma // preserves the original's ms2=mb no-op anomaly
	}
	// A real skew-symmetric matrix K has purely imaginary eigenvalues in
	// conjugate pairs i*sigma_k; forming K^2 (symmetric, negative
	// semi-definite) and eigendecomposing it recovers sigma_k^2, and the
	// eigenvectors of K^2 give an orthogonal basis V for the invariant
	// 2-planes of K, with W = K*V/sigma completing the rotation generator.
	k2 := zeroMat(n)
	for i := 0; i < n; i++ {
		for kk := 0; kk < n; kk++ {
			kik := k4[i][kk]
			if kik == 0 {
				continue
			}
			for j := 0; j < n; j++ {
				k2[i][j] += kik * k4[kk][j]
			}
		}
	}
	for i := range k2 {
		for j := range k2[i] {
			k2[i][j] = -k2[i][j]
		}
	}
	eig, vecs := (&hostEigen{}).factor(k2)
	for i := 0; i < n; i++ {
		s := math.Sqrt(math.Max(eig[i], 0))
		sigma[i] = s
		for row := 0; row < n; row++ {
			v[row][i] = vecs[row][i]
		}
	}
	for i := 0; i < n; i++ {
		if sigma[i] < 1e-14 {
			continue
		}
		for row := 0; row < n; row++ {
			acc := 0.0
			for kk := 0; kk < n; kk++ {
				acc += k4[row][kk] * v[kk][i]
			}
			w[row][i] = acc / sigma[i]
		}
	}
	return v, w, sigma
}

// hostEigen is a tiny Jacobi eigensolver used only by M4FactorSkew's
// internal K^2 diagonalization -- kept separate from device.Device because
// it operates on the 2n x 2n skew-companion matrix, not on orbital overlap
// matrices, and does not need to be back-end-selectable.
type hostEigen struct{}

func (hostEigen) factor(a device.Matrix) (eig []float64, v device.Matrix) {
	n := len(a)
	m := cloneMat(a)
	v = zeroMat(n)
	for i := 0; i < n; i++ {
		v[i][i] = 1
	}
	for sweep := 0; sweep < 100; sweep++ {
		off := 0.0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				off += m[i][j] * m[i][j]
			}
		}
		if off < 1e-28 {
			break
		}
		for p := 0; p < n; p++ {
			for q := p + 1; q < n; q++ {
				if math.Abs(m[p][q]) < 1e-300 {
					continue
				}
				theta := 0.5 * math.Atan2(2*m[p][q], m[q][q]-m[p][p])
				c, s := math.Cos(theta), math.Sin(theta)
				for i := 0; i < n; i++ {
					mip, miq := m[i][p], m[i][q]
					m[i][p] = c*mip - s*miq
					m[i][q] = s*mip + c*miq
				}
				for i := 0; i < n; i++ {
					mpi, mqi := m[p][i], m[q][i]
					m[p][i] = c*mpi - s*mqi
					m[q][i] = s*mpi + c*mqi
				}
				for i := 0; i < n; i++ {
					vip, viq := v[i][p], v[i][q]
					v[i][p] = c*vip - s*viq
					v[i][q] = s*vip + c*viq
				}
			}
		}
	}
	eig = make([]float64, n)
	for i := 0; i < n; i++ {
		eig[i] = m[i][i]
	}
	return eig, v
}

// M4RotationSkew implements m4_RotationSkew: R(t) = V*cos(Sigma*t)*V^T +
// W*sin(Sigma*t)*V^T.
func M4RotationSkew(t float64, v, w device.Matrix, sigma []float64) device.Matrix {
	n := len(sigma)
	r := zeroMat(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			acc := 0.0
			for k := 0; k < n; k++ {
				acc += (v[i][k]*math.Cos(sigma[k]*t) + w[i][k]*math.Sin(sigma[k]*t)) * v[j][k]
			}
			r[i][j] = acc
		}
	}
	return r
}

// MMSCtimesVtrans2 computes S*cos(Sigma*t)*V^T, one of the mm_SCtimesVtrans
// family of helper contractions used by different integrators (spec §4.7).
func MMSCtimesVtrans2(s, v device.Matrix, sigma []float64, t float64) device.Matrix {
	n := len(sigma)
	out := zeroMat(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			acc := 0.0
			for k := 0; k < n; k++ {
				acc += s[i][k] * math.Cos(sigma[k]*t) * v[j][k]
			}
			out[i][j] = acc
		}
	}
	return out
}

// MMSCtimesVtrans3 computes S*sin(Sigma*t)*V^T.
func MMSCtimesVtrans3(s, v device.Matrix, sigma []float64, t float64) device.Matrix {
	n := len(sigma)
	out := zeroMat(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			acc := 0.0
			for k := 0; k < n; k++ {
				acc += s[i][k] * math.Sin(sigma[k]*t) * v[j][k]
			}
			out[i][j] = acc
		}
	}
	return out
}
